// Package profile normalizes the loosely shaped draft JSON documents into the
// display shapes shared by the editor preview, the moderation preview and the
// public detail page. Parsing never fails: unexpected shapes degrade to
// defaults and malformed items are skipped.
package profile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jwalitptl/clinic-directory/internal/model"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	HoursOpen   = "open"
	HoursClosed = "closed"
)

func decode(raw []byte) interface{} {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	// Some writers double-encode documents as JSON strings.
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			return decode([]byte(s))
		}
	}
	return v
}

func str(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// first returns the first non-empty string among keys of obj.
func first(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := str(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

func items(v interface{}) []interface{} {
	if arr, ok := v.([]interface{}); ok {
		return arr
	}
	return nil
}

func stringList(v interface{}) []string {
	out := []string{}
	for _, it := range items(v) {
		s := str(it)
		if obj, ok := it.(map[string]interface{}); ok {
			s = first(obj, "name", "label", "value")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ParseBasicInfo(raw []byte) model.BasicInfo {
	obj, _ := decode(raw).(map[string]interface{})
	if obj == nil {
		return model.BasicInfo{}
	}
	return model.BasicInfo{
		Name:        first(obj, "name"),
		Slug:        first(obj, "slug"),
		Specialty:   first(obj, "specialty"),
		Country:     first(obj, "country"),
		City:        first(obj, "city"),
		Province:    first(obj, "province"),
		District:    first(obj, "district"),
		Description: first(obj, "description"),
	}
}

func ParseServices(raw []byte) []model.ServiceItem {
	out := []model.ServiceItem{}
	for _, it := range items(decode(raw)) {
		var s model.ServiceItem
		switch t := it.(type) {
		case string:
			s.Name = strings.TrimSpace(t)
		case map[string]interface{}:
			s = model.ServiceItem{
				Name:        first(t, "name", "title"),
				Price:       first(t, "price"),
				Currency:    first(t, "currency"),
				Description: first(t, "description"),
			}
		}
		if s.Name != "" {
			out = append(out, s)
		}
	}
	return out
}

func ParseDoctors(raw []byte) []model.DoctorItem {
	out := []model.DoctorItem{}
	for _, it := range items(decode(raw)) {
		var d model.DoctorItem
		switch t := it.(type) {
		case string:
			d.Name = strings.TrimSpace(t)
		case map[string]interface{}:
			d = model.DoctorItem{
				Name:      first(t, "fullName", "full_name", "name"),
				Title:     first(t, "title"),
				Specialty: first(t, "specialty"),
			}
		}
		if d.Name != "" {
			out = append(out, d)
		}
	}
	return out
}

// ParseHours accepts either a list of {day,status,start,end} or an object keyed
// by day. Days missing from the document are reported closed.
func ParseHours(raw []byte) []model.HourItem {
	byDay := map[string]model.HourItem{}

	add := func(day string, obj map[string]interface{}) {
		day = canonicalDay(day)
		if day == "" {
			return
		}
		h := model.HourItem{
			Day:    day,
			Status: strings.ToLower(first(obj, "status")),
			Start:  first(obj, "start", "open"),
			End:    first(obj, "end", "close"),
		}
		if h.Status == "" {
			if h.Start != "" && h.End != "" {
				h.Status = HoursOpen
			} else {
				h.Status = HoursClosed
			}
		}
		byDay[day] = h
	}

	switch t := decode(raw).(type) {
	case []interface{}:
		for _, it := range t {
			if obj, ok := it.(map[string]interface{}); ok {
				add(first(obj, "day"), obj)
			}
		}
	case map[string]interface{}:
		for day, it := range t {
			if obj, ok := it.(map[string]interface{}); ok {
				add(day, obj)
			}
		}
	}

	out := make([]model.HourItem, 0, len(Weekdays))
	for _, day := range Weekdays {
		if h, ok := byDay[day]; ok {
			out = append(out, h)
			continue
		}
		out = append(out, model.HourItem{Day: day, Status: HoursClosed})
	}
	return out
}

func canonicalDay(day string) string {
	day = strings.ToLower(strings.TrimSpace(day))
	if len(day) < 3 {
		return ""
	}
	for _, d := range Weekdays {
		if strings.HasPrefix(strings.ToLower(d), day[:3]) {
			return d
		}
	}
	return ""
}

func ParseGallery(raw []byte) []model.GalleryItem {
	out := []model.GalleryItem{}
	for _, it := range items(decode(raw)) {
		var g model.GalleryItem
		switch t := it.(type) {
		case string:
			g.URL = strings.TrimSpace(t)
		case map[string]interface{}:
			g = model.GalleryItem{URL: first(t, "url", "src"), Title: first(t, "title", "caption")}
		}
		if g.URL != "" {
			out = append(out, g)
		}
	}
	return out
}

func ParseFacilities(raw []byte) model.Facilities {
	obj, _ := decode(raw).(map[string]interface{})
	return model.Facilities{
		Premises:        stringList(obj["premises"]),
		ClinicServices:  stringList(obj["clinic_services"]),
		TravelServices:  stringList(obj["travel_services"]),
		LanguagesSpoken: stringList(obj["languages_spoken"]),
	}
}

func ParseLocation(raw []byte) model.LocationInfo {
	obj, _ := decode(raw).(map[string]interface{})
	if obj == nil {
		return model.LocationInfo{}
	}
	return model.LocationInfo{
		MapURL:     first(obj, "mapUrl", "map_url"),
		Directions: first(obj, "directions"),
	}
}

// ParsePricing accepts [{method}] or [string].
func ParsePricing(raw []byte) []string {
	out := []string{}
	for _, it := range items(decode(raw)) {
		s := str(it)
		if obj, ok := it.(map[string]interface{}); ok {
			s = first(obj, "method", "name")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FormatService renders a service line such as "Cleaning — 100 USD".
func FormatService(s model.ServiceItem) string {
	line := s.Name
	if s.Price == "" {
		return line
	}
	line += " — " + s.Price
	if s.Currency != "" {
		line += " " + s.Currency
	}
	return line
}

// Preview merges draft content over the published clinic. A nil draft yields the
// published profile alone.
func Preview(clinic *model.Clinic, draft *model.ClinicProfileDraft) *model.ClinicProfile {
	p := &model.ClinicProfile{}

	if clinic != nil {
		p.BasicInfo = model.BasicInfo{
			Name:        clinic.Name,
			Slug:        clinic.Slug,
			Specialty:   deref(clinic.Specialty),
			Country:     deref(clinic.Country),
			City:        deref(clinic.City),
			Province:    deref(clinic.Province),
			District:    deref(clinic.District),
			Description: deref(clinic.Description),
		}
		p.Address = deref(clinic.Address)
		p.Location.MapURL = deref(clinic.MapURL)
	}

	if draft != nil {
		overlay(&p.BasicInfo, ParseBasicInfo(draft.BasicInfo))
		p.Services = ParseServices(draft.Services)
		p.Doctors = ParseDoctors(draft.Doctors)
		p.Hours = ParseHours(draft.Hours)
		p.Gallery = ParseGallery(draft.Gallery)
		p.Facilities = ParseFacilities(draft.Facilities)
		p.Pricing = ParsePricing(draft.Pricing)

		loc := ParseLocation(draft.Location)
		if loc.MapURL != "" {
			p.Location.MapURL = loc.MapURL
		}
		p.Location.Directions = loc.Directions
	} else {
		p.Services = []model.ServiceItem{}
		p.Doctors = []model.DoctorItem{}
		p.Hours = ParseHours(nil)
		p.Gallery = []model.GalleryItem{}
		p.Facilities = ParseFacilities(nil)
		p.Pricing = []string{}
	}

	p.ServiceLines = make([]string, 0, len(p.Services))
	for _, s := range p.Services {
		p.ServiceLines = append(p.ServiceLines, FormatService(s))
	}
	return p
}

func overlay(dst *model.BasicInfo, src model.BasicInfo) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Name, src.Name)
	set(&dst.Slug, src.Slug)
	set(&dst.Specialty, src.Specialty)
	set(&dst.Country, src.Country)
	set(&dst.City, src.City)
	set(&dst.Province, src.Province)
	set(&dst.District, src.District)
	set(&dst.Description, src.Description)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Published builds the public profile from the clinic row and the service and
// staff tables the publish procedure maintains.
func Published(clinic *model.Clinic, services []*model.ClinicService, doctors []*model.Doctor) *model.ClinicProfile {
	p := Preview(clinic, nil)

	for _, s := range services {
		item := model.ServiceItem{
			Name:        s.Name,
			Price:       deref(s.Price),
			Currency:    deref(s.Currency),
			Description: deref(s.Description),
		}
		p.Services = append(p.Services, item)
		p.ServiceLines = append(p.ServiceLines, FormatService(item))
	}
	for _, d := range doctors {
		p.Doctors = append(p.Doctors, model.DoctorItem{
			Name:      d.FullName,
			Title:     deref(d.Title),
			Specialty: deref(d.Specialty),
		})
	}
	return p
}
