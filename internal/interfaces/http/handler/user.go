package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
)

// UserHandler manages user accounts
type UserHandler struct {
	BaseHandler
	users *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(base BaseHandler, users *appidentity.UserService) *UserHandler {
	return &UserHandler{BaseHandler: base, users: users}
}

type usersView struct {
	Users shared.Paginated[appidentity.UserDTO]
	Roles []identity.Role
}

type createUserForm struct {
	Username string `form:"username" binding:"required,min=3,max=50"`
	FullName string `form:"full_name" binding:"required,max=100"`
	Email    string `form:"email" binding:"required,email,max=100"`
	Phone    string `form:"phone" binding:"omitempty,max=20"`
	Role     string `form:"role" binding:"required,role"`
	Password string `form:"password" binding:"required,min=8,max=72"`
}

type updateUserForm struct {
	FullName string `form:"full_name" binding:"required,max=100"`
	Email    string `form:"email" binding:"required,email,max=100"`
	Phone    string `form:"phone" binding:"omitempty,max=20"`
	Role     string `form:"role" binding:"required,role"`
	Password string `form:"password" binding:"omitempty,min=8,max=72"`
}

// List renders the users page
func (h *UserHandler) List(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.renderError(c, err)
		return
	}
	page, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.render(c, "users", "Users", "users", usersView{Users: page, Roles: identity.AllRoles})
}

// Create handles the new-user form
func (h *UserHandler) Create(c *gin.Context) {
	var form createUserForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/users")
		return
	}
	user, err := h.users.Create(c.Request.Context(), actor(c), appidentity.CreateUserInput{
		Username: form.Username,
		FullName: form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
		Role:     identity.Role(form.Role),
	})
	if err != nil {
		h.fail(c, err, "/users")
		return
	}
	h.succeed(c, "/users", "User "+user.Username+" created")
}

// Update handles the edit-user form
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.fail(c, err, "/users")
		return
	}
	var form updateUserForm
	if err := c.ShouldBind(&form); err != nil {
		h.invalid(c, err, "/users")
		return
	}
	user, err := h.users.Update(c.Request.Context(), actor(c), id, appidentity.UpdateUserInput{
		FullName: form.FullName,
		Email:    form.Email,
		Phone:    form.Phone,
		Role:     identity.Role(form.Role),
		Password: form.Password,
	})
	if err != nil {
		h.fail(c, err, "/users")
		return
	}
	h.succeed(c, "/users", "User "+user.Username+" updated")
}

// Get godoc
// @ID           getUser
// @Summary      Get a user
// @Description  Returns one account. Admin and owner only.
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"  format(uuid)
// @Success      200  {object}  APIResponse[appidentity.UserDTO]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}

// ToggleActivation godoc
// @ID           toggleUserActivation
// @Summary      Activate or deactivate a user
// @Description  Flips is_active and returns the updated account. Nobody can deactivate themselves.
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"  format(uuid)
// @Success      200  {object}  APIResponse[appidentity.UserDTO]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /api/v1/users/{id}/toggle-activation [post]
func (h *UserHandler) ToggleActivation(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	user, err := h.users.ToggleActivation(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, user)
}
