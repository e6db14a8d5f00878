package panorama

import (
	"os"

	"gopkg.in/yaml.v3"
)

// TourConfig describes the panorama shown for one lesson.
type TourConfig struct {
	ImageURL string    `json:"image_url" yaml:"image_url"`
	Hotspots []Hotspot `json:"hotspots" yaml:"hotspots"`
}

// Tours maps lesson titles to their tour configuration. The lookup is pure
// and synchronous; lessons without an entry simply have no panorama.
type Tours map[string]TourConfig

// ForLesson returns the tour for a lesson title, if one is configured.
func (t Tours) ForLesson(title string) (TourConfig, bool) {
	cfg, ok := t[title]
	return cfg, ok
}

// ParseTours decodes a YAML tour document keyed by lesson title.
func ParseTours(data []byte) (Tours, error) {
	var t Tours
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t == nil {
		t = Tours{}
	}
	return t, nil
}

// LoadTours reads a YAML tour document from disk. An empty path yields the
// built-in defaults.
func LoadTours(path string) (Tours, error) {
	if path == "" {
		return DefaultTours(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTours(data)
}

// DefaultTours is the built-in tour set for the demo safety course.
func DefaultTours() Tours {
	return Tours{
		"Introduction to Loading Safety": {
			ImageURL: "/assets/tours/truck-loading/scene-1.jpeg",
			Hotspots: []Hotspot{
				{
					Pitch: -10, Yaw: -30,
					Title: "Forklift Operating Area",
					Text:  "Forklifts operate in this area. Only trained operators should drive forklifts, and pedestrians must keep a safe distance to avoid accidents.",
				},
				{
					Pitch: -8, Yaw: 35,
					Title: "Truck Loading and Unloading Bay",
					Text:  "This is the truck loading and unloading zone. Vehicles must be properly parked and secured before loading begins.",
				},
				{
					Pitch: -2, Yaw: -10,
					Title: "Personal Protective Equipment (PPE)",
					Text:  "Workers are required to wear PPE such as helmets and high-visibility vests in this high-risk area.",
				},
				{
					Pitch: -20, Yaw: 0,
					Title: "Pedestrian Safety Zone",
					Text:  "Pedestrian safety zones help separate workers from moving vehicles and reduce the risk of collisions.",
				},
				{
					Pitch: -12, Yaw: -10,
					Title: "Material Handling and Pallet Area",
					Text:  "Materials must be stacked properly to prevent falling objects and workplace injuries.",
				},
				{
					Pitch: 6.5, Yaw: -70,
					Title: "Storage Shelf and Racking Area",
					Text:  "Storage shelves must not be overloaded, and materials should be secured properly to prevent falling objects and serious injuries.",
				},
			},
		},
	}
}
