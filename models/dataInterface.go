package models

type Identifier interface {
	GetId() int
}

// Resource is a cached model owned by one business.
type Resource interface {
	GetBusinessId() string
}

func (m Material) GetId() int            { return m.ID }
func (m Material) GetBusinessId() string { return m.BusinessId }

func (c Color) GetId() int            { return c.ID }
func (c Color) GetBusinessId() string { return c.BusinessId }

func (p Product) GetId() int            { return p.ID }
func (p Product) GetBusinessId() string { return p.BusinessId }

func (s Supplier) GetId() int            { return s.ID }
func (s Supplier) GetBusinessId() string { return s.BusinessId }

func (p Purchase) GetId() int            { return p.ID }
func (p Purchase) GetBusinessId() string { return p.BusinessId }
