package types

import "fmt"

const (
	PlacementFront = "front"
	PlacementBack  = "back"
)

// DesignPlacement positions a custom design on the garment. Percent fields
// are relative to the printable area.
type DesignPlacement struct {
	Location string  `json:"location"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

// CustomDesign is the optional per-line print job. ImageRef and PreviewRef
// are opaque handles owned by the external asset store.
type CustomDesign struct {
	ImageRef   string          `json:"image_ref"`
	PreviewRef string          `json:"preview_ref,omitempty"`
	Placement  DesignPlacement `json:"placement"`
}

// Validate checks the placement is well formed.
func (d CustomDesign) Validate() error {
	if d.ImageRef == "" {
		return fmt.Errorf("custom design: image_ref required")
	}
	if d.Placement.Location != PlacementFront && d.Placement.Location != PlacementBack {
		return fmt.Errorf("custom design: location must be front or back")
	}
	if d.Placement.X < 0 || d.Placement.X > 100 || d.Placement.Y < 0 || d.Placement.Y > 100 {
		return fmt.Errorf("custom design: x/y must be within 0-100")
	}
	if d.Placement.Width <= 0 || d.Placement.Height <= 0 {
		return fmt.Errorf("custom design: width/height must be positive")
	}
	if d.Placement.Scale <= 0 {
		return fmt.Errorf("custom design: scale must be positive")
	}
	return nil
}
