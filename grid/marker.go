package grid

// Kind categorizes what occupies a cell.
type Kind uint8

const (
	KindEmpty    Kind = iota // free floor
	KindObstacle             // wall or placed item
	KindItem                 // item waiting for pickup
	KindRobot                // robot start position
)

// Tokens used by Parse and String.
const (
	TokenEmpty    = "-"
	TokenEmptyAlt = "."
	TokenObstacle = "#"
	TokenRobot    = "R"
)

// Marker is the content of one cell. Label is set for items and the robot.
type Marker struct {
	Kind  Kind
	Label string
}

// Empty returns an empty marker.
func Empty() Marker { return Marker{Kind: KindEmpty} }

// Obstacle returns an obstacle marker.
func Obstacle() Marker { return Marker{Kind: KindObstacle} }

// Item returns a marker for the named item.
func Item(label string) Marker { return Marker{Kind: KindItem, Label: label} }

// Robot returns the robot marker.
func Robot() Marker { return Marker{Kind: KindRobot, Label: TokenRobot} }

// ParseMarker maps a text token to a marker. Unknown tokens are item labels.
func ParseMarker(tok string) Marker {
	switch tok {
	case TokenEmpty, TokenEmptyAlt, "":
		return Empty()
	case TokenObstacle:
		return Obstacle()
	case TokenRobot:
		return Robot()
	default:
		return Item(tok)
	}
}

func (m Marker) String() string {
	switch m.Kind {
	case KindObstacle:
		return TokenObstacle
	case KindItem:
		return m.Label
	case KindRobot:
		return TokenRobot
	default:
		return TokenEmpty
	}
}
