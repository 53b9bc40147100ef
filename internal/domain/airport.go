package domain

type Airport struct {
	IATA        string  `json:"iata"`
	ICAO        string  `json:"icao"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	Country     string  `json:"country"`     // display name
	CountryCode string  `json:"countryCode"` // FK into Country.Code
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"` // IANA zone name
}

type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Continent string `json:"continent"`
}
