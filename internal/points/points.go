// Package points maps contribution activity to reward points and levels.
package points

// Contribution types.
const (
	TypeSync       = "sync"
	TypeCorrection = "correction"
	TypeValidation = "validation"
)

// ForContribution returns the points awarded for a contribution type.
// Unknown types earn nothing.
func ForContribution(contribType string) int {
	switch contribType {
	case TypeSync:
		return 10
	case TypeCorrection:
		return 5
	case TypeValidation:
		return 3
	default:
		return 0
	}
}

// LevelFor maps a running points total to a contributor level.
func LevelFor(total int) int {
	switch {
	case total < 50:
		return 1
	case total < 200:
		return 2
	case total < 500:
		return 3
	default:
		return 4
	}
}

// LevelName returns the display name of a level.
func LevelName(level int) string {
	switch level {
	case 1:
		return "Beginner"
	case 2:
		return "Contributor"
	case 3:
		return "Expert"
	case 4:
		return "Ambassador"
	default:
		return "Unknown"
	}
}
