package builtin

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/types"
)

// DefaultCacheSize is used when a cache is configured without max
const DefaultCacheSize = 1000

// LoggerServicePrefix prefixes the services registered by the loggers feature
const LoggerServicePrefix = "logger."

type loggerOptions struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// Loggers registers named zerolog loggers as services "logger.<name>".
// Options map a name to {level, format: console|json, file}.
var Loggers = &types.Feature{
	Stage:       types.StageService,
	Description: "Register named loggers",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		entries, err := asMap(name, options)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(entries))
		for n := range entries {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, loggerName := range names {
			var opts loggerOptions
			if err := config.Decode(entries[loggerName], &opts); err != nil {
				return errors.Wrapf(err, errors.ErrConfigInvalid, "logger %q", loggerName)
			}

			logger, closer, err := buildLogger(host, loggerName, opts)
			if err != nil {
				return err
			}
			if closer != nil {
				host.Events().On(events.Stopped, func(ctx context.Context, ev *events.Event) {
					_ = closer.Close()
				})
			}
			if err := host.RegisterService(LoggerServicePrefix+loggerName, logger, false); err != nil {
				return err
			}
		}
		return nil
	},
}

func buildLogger(host types.Host, name string, opts loggerOptions) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Logger{}, nil, errors.Wrapf(err, errors.ErrConfigInvalid, "logger %q has invalid level", name)
		}
		level = parsed
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if opts.File != "" {
		path := host.ToAbsolutePath(opts.File)
		f, err := fsOf(host).OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Logger{}, nil, errors.Wrapf(err, errors.ErrConfigInvalid, "logger %q cannot open %s", name, path)
		}
		w, closer = f, f
	}

	switch opts.Format {
	case "", "console":
		if opts.File == "" {
			w = zerolog.ConsoleWriter{Out: w}
		}
	case "json":
	default:
		return zerolog.Logger{}, nil, errors.Newf(errors.ErrConfigInvalid, "logger %q has unknown format %q", name, opts.Format)
	}

	logger := logging.New(w, level).With().Str("app", host.Name()).Str("logger", name).Logger()
	return logger, closer, nil
}

type cacheOptions struct {
	Max int `koanf:"max"`
}

type lruCacheOptions struct {
	Default   cacheOptions            `koanf:"default"`
	Resources map[string]cacheOptions `koanf:"resources"`
}

// Cache is an LRU cache of arbitrary values
type Cache = lru.Cache[string, any]

// CacheService hands out one LRU cache per resource. Each cache is also
// registered as service "<name>:<resource>".
type CacheService struct {
	host types.Host
	name string
	opts lruCacheOptions
	mu   sync.Mutex
}

// Res returns the cache for resource, creating it on first use
func (s *CacheService) Res(resource string) (*Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.name + ":" + resource
	if existing, ok := s.host.GetService(key).(*Cache); ok {
		return existing, nil
	}

	size := s.opts.Default.Max
	if res, ok := s.opts.Resources[resource]; ok && res.Max > 0 {
		size = res.Max
	}
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "cannot create cache %q", key)
	}
	if err := s.host.RegisterService(key, cache, false); err != nil {
		return nil, err
	}
	return cache, nil
}

// Reset purges the cache for resource and returns it
func (s *CacheService) Reset(resource string) (*Cache, error) {
	cache, err := s.Res(resource)
	if err != nil {
		return nil, err
	}
	cache.Purge()
	return cache, nil
}

// LRUCache registers a *CacheService under the feature name and pre-creates
// the configured resources. Options: {default: {max}, resources: {name: {max}}}.
var LRUCache = &types.Feature{
	Stage:       types.StageService,
	Groupable:   true,
	Description: "Register in-memory LRU caches",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		var opts lruCacheOptions
		if options != nil {
			if err := config.Decode(options, &opts); err != nil {
				return err
			}
		}

		svc := &CacheService{host: host, name: name, opts: opts}

		resources := make([]string, 0, len(opts.Resources))
		for r := range opts.Resources {
			resources = append(resources, r)
		}
		sort.Strings(resources)
		for _, r := range resources {
			if _, err := svc.Res(r); err != nil {
				return err
			}
		}

		return host.RegisterService(name, svc, false)
	},
}

// ServiceGroup loads groupable features several times under the names
// "<feature>-<instance>". Options: {feature: {instance: options}}.
var ServiceGroup = &types.Feature{
	Stage:       types.StageService,
	Description: "Instantiate groupable features under several names",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		groups, err := asMap(name, options)
		if err != nil {
			return err
		}

		type instance struct {
			feature *types.Feature
			group   string
			name    string
			options any
		}

		// Every group is validated before any instance starts loading
		var instances []instance
		for featureName, byName := range groups {
			f, err := host.ResolveFeature(featureName)
			if err != nil {
				return err
			}
			if !f.Groupable {
				return errors.Newf(errors.ErrFeatureInvalid, "feature %q is not groupable", featureName).
					WithDetail("feature", featureName)
			}

			byInstance, err := asMap(name+"."+featureName, byName)
			if err != nil {
				return err
			}
			for instanceName, instanceOptions := range byInstance {
				instances = append(instances, instance{
					feature: f,
					group:   featureName,
					name:    featureName + "-" + instanceName,
					options: instanceOptions,
				})
			}
		}

		eg, gctx := errgroup.WithContext(ctx)
		for _, in := range instances {
			eg.Go(func() error {
				if err := in.feature.Load(gctx, host, in.options, in.name); err != nil {
					return errors.Wrapf(err, errors.ErrFeatureLoad, "service %q failed to load", in.name).
						WithDetail("feature", in.group)
				}
				return nil
			})
		}
		return eg.Wait()
	},
}
