package dto

type PriceForDateItem struct {
	Price       int64  `json:"price"`
	Airline     string `json:"airline"`
	DepartureAt string `json:"departure_at"`
	Transfers   int    `json:"transfers"`
	Link        string `json:"link"`
}

type PriceForDatesResponse struct {
	Success bool               `json:"success"`
	Data    []PriceForDateItem `json:"data"`
	Error   string             `json:"error"`
}
