package game

// Conditions maps an attribute to the minimum numeric value it must hold.
type Conditions map[string]float64

// IsAvailable reports whether status satisfies every condition. Absent or
// non-numeric attributes count as 0.
func IsAvailable(status Status, conds Conditions) bool {
	for attr, min := range conds {
		if status.Num(attr) < min {
			return false
		}
	}
	return true
}
