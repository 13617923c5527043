package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/samber/lo"
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	dbusListNames    = "org.freedesktop.DBus.ListNames"
)

// DBusController implements MediaController by talking MPRIS over the
// session bus directly, for systems without playerctl
type DBusController struct {
	connect func() (*dbus.Conn, error)
}

// NewDBusController creates a controller on the shared session bus connection
func NewDBusController() *DBusController {
	return &DBusController{connect: dbus.SessionBus}
}

func (d *DBusController) player(id string) (dbus.BusObject, error) {
	conn, err := d.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: connect session bus: %v", ErrNoPlayersAvailable, err)
	}
	return conn.Object(mprisPrefix+id, mprisPath), nil
}

func (d *DBusController) property(id, name string) (dbus.Variant, error) {
	obj, err := d.player(id)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, err := obj.GetProperty(mprisPlayerIface + "." + name)
	if err != nil {
		return dbus.Variant{}, fmt.Errorf("get %s of %s: %w", name, id, err)
	}
	return v, nil
}

func (d *DBusController) ListSessions(ctx context.Context) ([]string, error) {
	conn, err := d.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: connect session bus: %v", ErrNoPlayersAvailable, err)
	}

	var names []string
	if err := conn.BusObject().CallWithContext(ctx, dbusListNames, 0).Store(&names); err != nil {
		return nil, fmt.Errorf("%w: list bus names: %v", ErrNoPlayersAvailable, err)
	}

	return lo.FilterMap(names, func(name string, _ int) (string, bool) {
		if !strings.HasPrefix(name, mprisPrefix) {
			return "", false
		}
		return strings.TrimPrefix(name, mprisPrefix), true
	}), nil
}

func (d *DBusController) Status(_ context.Context, id string) (PlaybackState, error) {
	v, err := d.property(id, "PlaybackStatus")
	if err != nil {
		return StateUnknown, err
	}
	s, _ := v.Value().(string)
	return parsePlaybackState(s), nil
}

// mprisMetadataKey maps the playerctl shorthand field names to xesam keys
func mprisMetadataKey(field string) string {
	switch field {
	case FieldTitle, FieldArtist, FieldAlbum:
		return "xesam:" + field
	}
	return field
}

// formatMetadataValue renders a metadata variant value the way playerctl prints it
func formatMetadataValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case dbus.ObjectPath:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(value)
}

func (d *DBusController) Metadata(_ context.Context, id, field string) (string, error) {
	v, err := d.property(id, "Metadata")
	if err != nil {
		return "", err
	}
	metadata, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return "", fmt.Errorf("unexpected metadata type %s for %s", v.Signature(), id)
	}
	value, ok := metadata[mprisMetadataKey(field)]
	if !ok {
		return "", fmt.Errorf("metadata %s not set for %s", field, id)
	}
	return formatMetadataValue(value.Value()), nil
}

func (d *DBusController) Position(_ context.Context, id string) (float64, error) {
	v, err := d.property(id, "Position")
	if err != nil {
		return 0, err
	}
	us, ok := v.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected position type %s for %s", v.Signature(), id)
	}
	return float64(us) / 1e6, nil
}

var transportMethods = map[TransportCommand]string{
	CmdPlayPause: "PlayPause",
	CmdPlay:      "Play",
	CmdPause:     "Pause",
	CmdStop:      "Stop",
}

func (d *DBusController) Control(ctx context.Context, id string, command TransportCommand) error {
	method, ok := transportMethods[command]
	if !ok {
		return fmt.Errorf("unknown transport command %q", command)
	}
	obj, err := d.player(id)
	if err != nil {
		return err
	}
	if err := obj.CallWithContext(ctx, mprisPlayerIface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%s on %s: %w", method, id, err)
	}
	return nil
}

func (d *DBusController) Shuffle(_ context.Context, id string) (bool, error) {
	v, err := d.property(id, "Shuffle")
	if err != nil {
		return false, err
	}
	on, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected shuffle type %s for %s", v.Signature(), id)
	}
	return on, nil
}

func (d *DBusController) SetShuffle(_ context.Context, id string, on bool) error {
	obj, err := d.player(id)
	if err != nil {
		return err
	}
	return obj.SetProperty(mprisPlayerIface+".Shuffle", dbus.MakeVariant(on))
}

func (d *DBusController) LoopMode(_ context.Context, id string) (LoopMode, error) {
	v, err := d.property(id, "LoopStatus")
	if err != nil {
		return "", err
	}
	s, _ := v.Value().(string)
	mode, ok := parseLoopMode(s)
	if !ok {
		return "", fmt.Errorf("unexpected loop status %q for %s", s, id)
	}
	return mode, nil
}

func (d *DBusController) SetLoopMode(_ context.Context, id string, mode LoopMode) error {
	obj, err := d.player(id)
	if err != nil {
		return err
	}
	return obj.SetProperty(mprisPlayerIface+".LoopStatus", dbus.MakeVariant(string(mode)))
}
