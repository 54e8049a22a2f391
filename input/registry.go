package input

import (
	"context"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/usercommand/logging"
)

// AttributeMap is the raw, untyped attributes of a controller as read from config.
type AttributeMap map[string]interface{}

// A Constructor builds a Controller from converted attributes.
type Constructor func(ctx context.Context, attrs interface{}, logger logging.Logger) (Controller, error)

// Registration stores how a controller model is created.
type Registration struct {
	Constructor Constructor
	// AttributeMapConverter turns an AttributeMap into the model's typed config. When nil the
	// AttributeMap is passed through unchanged.
	AttributeMapConverter func(attributes AttributeMap) (interface{}, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Registration{}
)

// RegisterController registers a controller model. Registering the same model twice panics.
func RegisterController(model string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, old := registry[model]; old {
		panic(errors.Errorf("trying to register two controllers with same model %q", model))
	}
	if reg.Constructor == nil {
		panic(errors.Errorf("cannot register a nil constructor for model %q", model))
	}
	registry[model] = reg
}

// LookupController looks up a controller registration by model.
func LookupController(model string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[model]
	return reg, ok
}

// RegisteredModels returns the sorted list of registered models.
func RegisteredModels() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	models := lo.Keys(registry)
	sort.Strings(models)
	return models
}

// ConvertAttributes converts attributes with the model's AttributeMapConverter.
func ConvertAttributes(model string, attributes AttributeMap) (interface{}, error) {
	reg, ok := LookupController(model)
	if !ok {
		return nil, errors.Errorf("unknown input controller model %q, have %v", model, RegisteredModels())
	}
	if reg.AttributeMapConverter == nil {
		return attributes, nil
	}
	converted, err := reg.AttributeMapConverter(attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot convert attributes of model %q", model)
	}
	return converted, nil
}

// NewController constructs a controller of the given model from already converted attributes.
func NewController(ctx context.Context, model string, converted interface{}, logger logging.Logger) (Controller, error) {
	reg, ok := LookupController(model)
	if !ok {
		return nil, errors.Errorf("unknown input controller model %q, have %v", model, RegisteredModels())
	}
	return reg.Constructor(ctx, converted, logger)
}

// AttributeConverter returns an AttributeMapConverter that decodes into a *T using the json tags
// of T.
func AttributeConverter[T any]() func(AttributeMap) (interface{}, error) {
	return func(attributes AttributeMap) (interface{}, error) {
		var conf T
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			Result:           &conf,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
			return nil, err
		}
		return &conf, nil
	}
}
