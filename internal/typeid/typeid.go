package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixEquipment  = "eq"
	PrefixTray       = "tray"
	PrefixOpening    = "open"
	PrefixConnection = "conn"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewEquipmentID() string  { return New(PrefixEquipment) }
func NewTrayID() string       { return New(PrefixTray) }
func NewOpeningID() string    { return New(PrefixOpening) }
func NewConnectionID() string { return New(PrefixConnection) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
