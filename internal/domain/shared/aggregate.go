package shared

// AggregateRoot is an entity whose updates are guarded by a version number
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot adds the optimistic-locking version to BaseEntity
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1" json:"version"`
}

// GetVersion returns the version the aggregate was loaded at
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion records that a guarded update succeeded
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// NewStaleWriteError reports an update that lost a race with another writer
func NewStaleWriteError(what string) *DomainError {
	return Errorf(CodeInvalidState, "%s was changed by someone else. Reload the page and try again", what)
}
