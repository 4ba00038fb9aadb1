package shared

// BaseAggregateRoot extends BaseEntity with an optimistic-lock version and a
// pending domain event list. The version increments on every state-changing
// operation; events accumulate until the application layer drains them.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates an aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion bumps the optimistic-lock version
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent records an event raised by the aggregate
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns the events pending since the last clear
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the pending events after they have been consumed
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
