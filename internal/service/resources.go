package service

// Resource describes one CRUD collection exposed over HTTP.
type Resource struct {
	// Name is the logical name used in routes and lookups.
	Name string
	// Table is the physical table; it must be in repository.Tables.
	Table string
	// Label is the singular display name used in messages ("Task not found").
	Label string
	// Required lists body fields that must be present and non-empty on create.
	Required []string
	// Defaults are applied on create when the field is absent, null or "".
	Defaults map[string]any
	// StampOnCreate lists fields set to the current time on create,
	// overriding anything the caller sent.
	StampOnCreate []string
	// Hidden lists columns stripped from every response.
	Hidden []string
}

var (
	Users = Resource{
		Name:     "users",
		Table:    "users",
		Label:    "User",
		Required: []string{"username", "email", "password_hash"},
		Hidden:   []string{"password_hash"},
	}
	Products = Resource{
		Name:     "products",
		Table:    "products",
		Label:    "Product",
		Required: []string{"name", "price"},
	}
	Orders = Resource{
		Name:     "orders",
		Table:    "orders",
		Label:    "Order",
		Required: []string{"user_id", "items", "total"},
		Defaults: map[string]any{"status": "pending"},
	}
	Invoices = Resource{
		Name:     "invoices",
		Table:    "invoices",
		Label:    "Invoice",
		Required: []string{"order_id"},
		Defaults: map[string]any{"status": "unpaid"},
	}
	PricingPlans = Resource{
		Name:     "pricing",
		Table:    "pricing_plans",
		Label:    "Pricing plan",
		Required: []string{"name", "price"},
	}
	Tasks = Resource{
		Name:     "tasks",
		Table:    "tasks",
		Label:    "Task",
		Required: []string{"title"},
	}
	Gallery = Resource{
		Name:     "gallery",
		Table:    "gallery",
		Label:    "Image",
		Required: []string{"url", "title"},
	}
	FAQs = Resource{
		Name:     "faq",
		Table:    "faqs",
		Label:    "FAQ",
		Required: []string{"question", "answer"},
	}
	Logs = Resource{
		Name:          "logs",
		Table:         "system_logs",
		Label:         "Log entry",
		Required:      []string{"message", "level"},
		StampOnCreate: []string{"timestamp"},
	}
)

// Resources returns every CRUD resource in registration order.
func Resources() []Resource {
	return []Resource{Users, Products, Orders, Invoices, PricingPlans, Tasks, Gallery, FAQs, Logs}
}
