package marker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/wirelink/internal/domain"
)

// WorldResolver reports whether a world reference names a loaded world.
type WorldResolver interface {
	Known(ref domain.WorldRef) bool
}

const (
	endpointFields = 6 // id, owner, world, (x, y, z)
	waypointFields = 7 // ... plus url
)

// Encode formats a record as one comma-separated line:
//
//	id,owner,namespace:name,(x,y,z)[,url]
func Encode(r Record) string {
	var b strings.Builder
	b.WriteString(r.ID.String())
	b.WriteByte(',')
	b.WriteString(r.Owner.String())
	b.WriteByte(',')
	b.WriteString(r.World.String())
	b.WriteByte(',')
	b.WriteString(r.Position.String())
	if r.Kind == domain.KindWaypoint {
		b.WriteByte(',')
		b.WriteString(r.URL)
	}
	return b.String()
}

// Decode parses a line produced by Encode. The parentheses around the
// position are optional; everything else must be canonical, so
// Encode(Decode(s)) == s holds for every canonical s.
// A nil resolver accepts any world.
func Decode(kind domain.Kind, line string, worlds WorldResolver) (Record, error) {
	line = strings.TrimRight(line, "\r\n")

	var fields []string
	switch kind {
	case domain.KindEndpoint:
		fields = strings.Split(line, ",")
		if len(fields) != endpointFields {
			return Record{}, decodeErr("expected %d fields, got %d", endpointFields, len(fields))
		}
	case domain.KindWaypoint:
		// The url is the tail of the line and may itself contain commas.
		fields = strings.SplitN(line, ",", waypointFields)
		if len(fields) != waypointFields {
			return Record{}, decodeErr("expected %d fields, got %d", waypointFields, len(fields))
		}
	default:
		return Record{}, decodeErr("unknown marker kind %q", kind)
	}

	id, err := parseUUID(fields[0])
	if err != nil {
		return Record{}, err
	}
	owner, err := parseUUID(fields[1])
	if err != nil {
		return Record{}, err
	}

	world, err := domain.ParseWorldRef(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if worlds != nil && !worlds.Known(world) {
		return Record{}, fmt.Errorf("%w: %w: %s", domain.ErrDecode, domain.ErrUnknownWorld, world)
	}

	pos, err := parsePosition(fields[3], fields[4], fields[5])
	if err != nil {
		return Record{}, err
	}

	r := Record{
		Kind:     kind,
		ID:       id,
		Owner:    owner,
		World:    world,
		Position: pos,
	}
	if kind == domain.KindWaypoint {
		r.URL = fields[6]
	}
	return r, nil
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, decodeErr("invalid uuid %q", s)
	}
	if id.String() != s {
		return uuid.Nil, decodeErr("non-canonical uuid %q", s)
	}
	return id, nil
}

func parsePosition(x, y, z string) (domain.Position, error) {
	xs := strings.TrimPrefix(x, "(")
	zs := strings.TrimSuffix(z, ")")

	var p domain.Position
	var err error
	if p.X, err = parseCoord(xs); err != nil {
		return domain.Position{}, err
	}
	if p.Y, err = parseCoord(y); err != nil {
		return domain.Position{}, err
	}
	if p.Z, err = parseCoord(zs); err != nil {
		return domain.Position{}, err
	}
	return p, nil
}

func parseCoord(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return 0, decodeErr("invalid coordinate %q", s)
	}
	return n, nil
}

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrDecode, fmt.Sprintf(format, args...))
}
