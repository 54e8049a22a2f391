package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/usercommand/logging"
)

// Sink types accepted in config.
const (
	TypeJSON = "json"
	TypeUDP  = "udp"
	TypeLog  = "log"
)

// StdoutPath makes a json sink write to standard output.
const StdoutPath = "-"

// Config describes one sink.
type Config struct {
	Type       string                 `json:"type"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// JSONAttributes configure a json sink.
type JSONAttributes struct {
	Path string `json:"path"`
}

// UDPAttributes configure a udp sink.
type UDPAttributes struct {
	Address string `json:"address"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	switch conf.Type {
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	case TypeJSON:
		var attrs JSONAttributes
		if err := decodeAttributes(conf.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
		if attrs.Path == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "attributes.path")
		}
	case TypeUDP:
		var attrs UDPAttributes
		if err := decodeAttributes(conf.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
		if attrs.Address == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "attributes.address")
		}
	case TypeLog:
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown sink type %q", conf.Type))
	}
	return nil
}

func decodeAttributes(attributes map[string]interface{}, into interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      into,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attributes)
}

// New builds the sink a config describes.
func New(conf Config, clk clock.Clock, logger logging.Logger) (Sink, error) {
	switch conf.Type {
	case TypeJSON:
		var attrs JSONAttributes
		if err := decodeAttributes(conf.Attributes, &attrs); err != nil {
			return nil, err
		}
		if attrs.Path == StdoutPath {
			return NewJSON(nopCloser{os.Stdout}, clk), nil
		}
		//nolint:gosec
		f, err := os.OpenFile(attrs.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open command file %q", attrs.Path)
		}
		return NewJSON(f, clk), nil
	case TypeUDP:
		var attrs UDPAttributes
		if err := decodeAttributes(conf.Attributes, &attrs); err != nil {
			return nil, err
		}
		return NewUDP(attrs.Address, clk)
	case TypeLog:
		return NewLog(logger), nil
	}
	return nil, errors.Errorf("unknown sink type %q", conf.Type)
}

// FromConfig builds every configured sink and fans out to them. Sinks already built are closed
// when a later one fails.
func FromConfig(ctx context.Context, confs []Config, clk clock.Clock, logger logging.Logger) (*Multi, error) {
	sinks := make([]Sink, 0, len(confs))
	for i, conf := range confs {
		s, err := New(conf, clk, logger.Sublogger(conf.Type))
		if err != nil {
			err = errors.Wrap(err, fmt.Sprintf("sinks.%d", i))
			return nil, multierr.Combine(err, NewMulti(sinks...).Close(ctx))
		}
		sinks = append(sinks, s)
	}
	return NewMulti(sinks...), nil
}

// nopCloser keeps the sink from closing stdout.
type nopCloser struct {
	*os.File
}

func (nopCloser) Close() error {
	return nil
}
