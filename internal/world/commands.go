package world

// Commands buffers structural changes to be applied to a World later.
//
// Actions receive Commands through the Cmds param so that they can spawn,
// despawn or attach components without holding the World; the bridge
// applies the buffer once perform returns.
type Commands struct {
	ops []func(*World)
}

// NewCommands returns an empty buffer.
func NewCommands() *Commands {
	return &Commands{}
}

// Add queues an arbitrary mutation.
func (c *Commands) Add(op func(*World)) {
	c.ops = append(c.ops, op)
}

// Spawn queues creation of an entity. then, if non-nil, receives the new
// entity when the buffer is applied.
func (c *Commands) Spawn(then func(*World, Entity)) {
	c.Add(func(w *World) {
		e := w.Spawn()
		if then != nil {
			then(w, e)
		}
	})
}

// Despawn queues removal of e.
func (c *Commands) Despawn(e Entity) {
	c.Add(func(w *World) { w.Despawn(e) })
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.ops)
}

// Apply runs every queued operation in order and empties the buffer.
func (c *Commands) Apply(w *World) {
	ops := c.ops
	c.ops = nil
	for _, op := range ops {
		op(w)
	}
}

// InsertLater queues attaching comp to e.
func InsertLater[T any](c *Commands, e Entity, comp *T) {
	c.Add(func(w *World) { Insert(w, e, comp) })
}

// SetResourceLater queues installing r as the singleton of type T.
func SetResourceLater[T any](c *Commands, r *T) {
	c.Add(func(w *World) { SetResource(w, r) })
}
