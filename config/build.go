package config

import (
	"context"
	"fmt"
	stdslog "log/slog"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/encstore"
	"github.com/unkn0wn-root/encstore/backend"
	"github.com/unkn0wn-root/encstore/backend/bigcache"
	"github.com/unkn0wn-root/encstore/backend/bolt"
	"github.com/unkn0wn-root/encstore/backend/memory"
	"github.com/unkn0wn-root/encstore/backend/natskv"
	"github.com/unkn0wn-root/encstore/backend/redis"
	"github.com/unkn0wn-root/encstore/backend/ristretto"
	"github.com/unkn0wn-root/encstore/codec"
	"github.com/unkn0wn-root/encstore/crypt"
	logruslog "github.com/unkn0wn-root/encstore/log/logrus"
	sloglog "github.com/unkn0wn-root/encstore/log/slog"
	zaplog "github.com/unkn0wn-root/encstore/log/zap"
	"github.com/unkn0wn-root/encstore/notify/slognotify"
)

// OpenBackend connects the configured backend. The caller owns the result
// and must Close it; Close also releases connections opened here.
func (c *Config) OpenBackend(ctx context.Context) (backend.Backend, error) {
	switch c.Backend.Kind {
	case KindMemory:
		return memory.New(), nil
	case KindBolt:
		return bolt.Open(bolt.Config{Path: c.Backend.Bolt.Path, Bucket: c.Backend.Bolt.Bucket})
	case KindRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     c.Backend.Redis.Addr,
			Username: c.Backend.Redis.Username,
			Password: c.Backend.Redis.Password,
			DB:       c.Backend.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s: %w", c.Backend.Redis.Addr, err)
		}
		return redis.New(redis.Config{Client: rdb, CloseClient: true})
	case KindBigCache:
		return bigcache.New(ctx, bigcache.Config{
			LifeWindow:         c.Backend.BigCache.LifeWindow,
			CleanWindow:        c.Backend.BigCache.CleanWindow,
			HardMaxCacheSizeMB: c.Backend.BigCache.MaxSizeMB,
		})
	case KindRistretto:
		return ristretto.New(ristretto.Config{
			NumCounters: c.Backend.Ristretto.NumCounters,
			MaxCost:     c.Backend.Ristretto.MaxCost,
			BufferItems: 64,
		})
	case KindNATS:
		return c.openNATS(ctx)
	}
	return nil, fmt.Errorf("backend.kind %q is not supported", c.Backend.Kind)
}

// natsBackend closes the connection it was opened with.
type natsBackend struct {
	*natskv.Backend
	nc *nats.Conn
}

func (b natsBackend) Close(ctx context.Context) error {
	err := b.Backend.Close(ctx)
	b.nc.Close()
	return err
}

func (c *Config) openNATS(ctx context.Context) (backend.Backend, error) {
	nc, err := nats.Connect(c.Backend.NATS.URL, nats.Name("encstore"))
	if err != nil {
		return nil, fmt.Errorf("nats %s: %w", c.Backend.NATS.URL, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: c.Backend.NATS.Bucket})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natskv: open bucket %s: %w", c.Backend.NATS.Bucket, err)
	}
	b, err := natskv.New(natskv.Config{Bucket: kv, Timeout: c.Backend.NATS.Timeout})
	if err != nil {
		nc.Close()
		return nil, err
	}
	return natsBackend{Backend: b, nc: nc}, nil
}

// Codec returns the configured value codec.
func (c *Config) Codec() (codec.Codec, error) {
	var cd codec.Codec
	switch c.Storage.Codec {
	case "json":
		cd = codec.JSON{}
	case "cbor":
		cb, err := codec.NewCBOR(true)
		if err != nil {
			return nil, err
		}
		cd = cb
	case "msgpack":
		cd = codec.Msgpack{}
	default:
		return nil, fmt.Errorf("storage.codec %q is not supported", c.Storage.Codec)
	}
	if c.Storage.MaxDecodeBytes > 0 {
		cd = codec.Limit{Inner: cd, MaxDecode: c.Storage.MaxDecodeBytes}
	}
	return cd, nil
}

// Logger builds the configured logger writing to stderr.
//
//	text => logrus, json => zap, slog => log/slog text handler
func (c *Config) Logger() (encstore.Logger, error) {
	switch c.Log.Format {
	case "json":
		lvl, err := zapcore.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, err
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(lvl)
		zc.OutputPaths = []string{"stderr"}
		l, err := zc.Build()
		if err != nil {
			return nil, err
		}
		return zaplog.New(l), nil
	case "text":
		lvl, err := logrus.ParseLevel(c.Log.Level)
		if err != nil {
			return nil, err
		}
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(lvl)
		return logruslog.New(l), nil
	case "slog":
		return sloglog.New(c.slogLogger()), nil
	}
	return nil, fmt.Errorf("log.format %q is not supported", c.Log.Format)
}

func (c *Config) slogLogger() *stdslog.Logger {
	var lvl stdslog.Level
	_ = lvl.UnmarshalText([]byte(c.Log.Level))
	return stdslog.New(stdslog.NewTextHandler(os.Stderr, &stdslog.HandlerOptions{Level: lvl}))
}

// Options assembles encstore.Options around be.
func (c *Config) Options(be backend.Backend, log encstore.Logger) (encstore.Options, error) {
	cd, err := c.Codec()
	if err != nil {
		return encstore.Options{}, err
	}
	opts := encstore.Options{
		Prefix:             c.Storage.Prefix,
		DoNotEncryptValues: c.Storage.DoNotEncryptValues,
		StateManagement:    c.Storage.StateManagement,
		Algorithm:          crypt.Algorithm(c.Storage.Algorithm),
		KDFIterations:      c.Storage.KDFIterations,
		Backend:            be,
		Codec:              cd,
		Logger:             log,
	}
	if c.Notify.Log {
		opts.NotifyHandler = slognotify.New(c.slogLogger(), slognotify.Options{ReadEvery: c.Notify.ReadEvery}).Handle
	}
	return opts, nil
}
