package checkin

import (
	"sync"

	"github.com/google/uuid"

	"github.com/oremi-app/oremi-backend/internal/settings"
)

// Registry hands out one preference Controller per user, created on demand
// and torn down on logout, account deletion or server shutdown.
type Registry struct {
	store settings.Store
	opts  []ControllerOption

	mu          sync.Mutex
	controllers map[uuid.UUID]*Controller
}

func NewRegistry(store settings.Store, opts ...ControllerOption) *Registry {
	return &Registry{
		store:       store,
		opts:        opts,
		controllers: make(map[uuid.UUID]*Controller),
	}
}

// Get returns the controller for a user, creating it on first use.
func (r *Registry) Get(userID uuid.UUID) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.controllers[userID]; ok {
		return c
	}
	c := NewController(r.store, userID, r.opts...)
	r.controllers[userID] = c
	return c
}

// Remove closes and discards a user's controller, if any.
func (r *Registry) Remove(userID uuid.UUID) {
	r.mu.Lock()
	c, ok := r.controllers[userID]
	delete(r.controllers, userID)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// CloseAll tears down every controller. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.controllers = make(map[uuid.UUID]*Controller)
	r.mu.Unlock()
	for _, c := range controllers {
		c.Close()
	}
}
