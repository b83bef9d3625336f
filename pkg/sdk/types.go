package sdk

// Identity is the authenticated user's profile plus the role assigned by the
// local staff directory. It is immutable for the session's duration and
// replaced wholesale on login.
type Identity struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender,omitempty"`
	Image     string `json:"image,omitempty"`
	Role      string `json:"role"`
}

// LoginResult is the response of the remote identity exchange. The profile
// fields arrive at the top level alongside the token.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	Identity
}

// Product is one catalog entry.
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ProductPage is one page of the catalog list.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// TotalItems reports the server-side total across all pages.
func (p ProductPage) TotalItems() int { return p.Total }

// CartProduct is one line item of an order.
type CartProduct struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// Cart is one order with its line items.
type Cart struct {
	ID            int           `json:"id"`
	UserID        int           `json:"userId"`
	Products      []CartProduct `json:"products"`
	Total         float64       `json:"total"`
	TotalProducts int           `json:"totalProducts"`
	TotalQuantity int           `json:"totalQuantity"`
}

// CartPage is one page of the order list.
type CartPage struct {
	Carts []Cart `json:"carts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// TotalItems reports the server-side total across all pages.
func (p CartPage) TotalItems() int { return p.Total }

// ListParams carries pagination and sort parameters for list reads. Zero
// Limit means the server's default page size.
type ListParams struct {
	Limit  int
	Skip   int
	SortBy string
	Order  string
}
