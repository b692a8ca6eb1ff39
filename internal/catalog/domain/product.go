package domain

// Product is a storefront listing as served by GET /products/{id}.
type Product struct {
	ID    int     `json:"id" yaml:"id"`
	Title string  `json:"title" yaml:"title"`
	Price float64 `json:"price" yaml:"price"`
	Image string  `json:"image" yaml:"image"`
}

// Stock is the available quantity of one product.
type Stock struct {
	ID     int `json:"id" yaml:"id"`
	Amount int `json:"amount" yaml:"amount"`
}
