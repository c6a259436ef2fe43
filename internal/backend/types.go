package backend

import "encoding/json"

// Roles the backend assigns to users.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// UnmarshalJSON accepts both "id" and the Mongo-style "_id" the backend has
// been observed to emit.
func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	aux := struct {
		*alias
		AltID    string `json:"_id"`
		AltFlag  *bool  `json:"isActive"`
		Inactive *bool  `json:"inactive"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.AltID
	}
	// Missing isActive means active; an explicit "inactive" flag overrides.
	if aux.AltFlag == nil && aux.Inactive == nil {
		u.IsActive = true
	} else if aux.Inactive != nil {
		u.IsActive = !*aux.Inactive
	} else {
		u.IsActive = *aux.AltFlag
	}
	return nil
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Product is the denormalized snapshot the storefront displays. It is a
// read-through copy of backend data and may go stale between requests.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	ComparePrice  float64  `json:"comparePrice,omitempty"`
	Image         string   `json:"image"`
	Images        []string `json:"images,omitempty"`
	Brand         string   `json:"brand"`
	Category      Category `json:"category"`
	VendorID      string   `json:"vendorId"`
	VendorName    string   `json:"vendorName"`
	Stock         int      `json:"stock"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int      `json:"reviewCount"`
	Views         int      `json:"views"`
	Purchases     int      `json:"purchases"`
	Tags          []string `json:"tags,omitempty"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

func (p Product) InStock() bool { return p.Stock > 0 }

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (c *Category) UnmarshalJSON(b []byte) error {
	// The backend sometimes sends a bare slug string instead of an object.
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Slug = s
		c.Name = s
		return nil
	}
	type alias Category
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = aux.AltID
	}
	return nil
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (ci CartItem) Subtotal() float64 { return ci.Product.Price * float64(ci.Quantity) }

type Cart struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"itemCount"`
}

type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	ID        string      `json:"id"`
	Number    string      `json:"orderNumber,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"createdAt"`
}

func (o *Order) UnmarshalJSON(b []byte) error {
	type alias Order
	aux := struct {
		*alias
		AltID string `json:"_id"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = aux.AltID
	}
	return nil
}

// DashboardStats is the analytics summary shown on role dashboards.
type DashboardStats struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalProducts  int     `json:"totalProducts"`
	TotalCustomers int     `json:"totalCustomers"`
}

type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}
