package model

// Display shapes of the draft JSON blobs. Stored documents carry no enforced
// schema, so these are what the profile package normalizes them into.

type BasicInfo struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Specialty   string `json:"specialty"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Province    string `json:"province"`
	District    string `json:"district"`
	Description string `json:"description"`
}

type ServiceItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

type DoctorItem struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Specialty string `json:"specialty"`
}

type HourItem struct {
	Day    string `json:"day"`
	Status string `json:"status"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type GalleryItem struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type Facilities struct {
	Premises        []string `json:"premises"`
	ClinicServices  []string `json:"clinic_services"`
	TravelServices  []string `json:"travel_services"`
	LanguagesSpoken []string `json:"languages_spoken"`
}

type LocationInfo struct {
	MapURL     string `json:"mapUrl"`
	Directions string `json:"directions"`
}

// ClinicProfile is the merged view rendered by both the editor preview and the
// moderation preview.
type ClinicProfile struct {
	BasicInfo    BasicInfo     `json:"basic_info"`
	Address      string        `json:"address"`
	Services     []ServiceItem `json:"services"`
	ServiceLines []string      `json:"service_lines"`
	Doctors      []DoctorItem  `json:"doctors"`
	Hours        []HourItem    `json:"hours"`
	Gallery      []GalleryItem `json:"gallery"`
	Facilities   Facilities    `json:"facilities"`
	Location     LocationInfo  `json:"location"`
	Pricing      []string      `json:"pricing"`
}
