// Package config holds the reconciler's runtime configuration.
package config

import "time"

const (
	BackendRedis = "redis"
	BackendMySQL = "mysql"
	BackendFile  = "file"
)

type Config struct {
	Server  Server   `yaml:"server"`
	Backend string   `yaml:"backend" validate:"oneof=redis mysql file"`
	Redis   Redis    `yaml:"redis"`
	MySQL   MySQL    `yaml:"mysql"`
	File    File     `yaml:"file"`
	Stores  []string `yaml:"stores" validate:"min=1,unique,dive,required"`
	Catalog Catalog  `yaml:"catalog"`
	Merge   Merge    `yaml:"merge"`
	Status  Status   `yaml:"status"`
	Images  Images   `yaml:"images"`
	Log     Log      `yaml:"log"`
}

type Server struct {
	HTTPAddr       string        `yaml:"http_addr" validate:"required"`
	GRPCAddr       string        `yaml:"grpc_addr" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

type Redis struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db" validate:"gte=0"`
	KeyPrefix string        `yaml:"key_prefix"`
	CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	PoolSize  int           `yaml:"pool_size" validate:"gte=0"`
}

type MySQL struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `yaml:"max_idle_conns" validate:"gte=0"`
}

type File struct {
	Path string `yaml:"path"`
}

// Catalog names the reference collections used for enrichment.
type Catalog struct {
	Products string   `yaml:"products"`
	Artists  string   `yaml:"artists"`
	Services []string `yaml:"services"`
}

type Merge struct {
	IdentityKeys []string `yaml:"identity_keys" validate:"dive,required"`
	// VersionField enables version comparison for priority fields when set.
	VersionField string `yaml:"version_field"`
}

type Status struct {
	DeliveryDays int           `yaml:"delivery_days" validate:"gt=0"`
	NearDeadline time.Duration `yaml:"near_deadline" validate:"gt=0"`
}

type Images struct {
	CDNBase   string    `yaml:"cdn_base" validate:"omitempty,url"`
	Fallbacks Fallbacks `yaml:"fallbacks"`
}

type Fallbacks struct {
	Product string `yaml:"product" validate:"required"`
	Artist  string `yaml:"artist" validate:"required"`
	Service string `yaml:"service" validate:"required"`
	Buyer   string `yaml:"buyer" validate:"required"`
	Item    string `yaml:"item" validate:"required"`
}

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns a configuration that runs against a local redis.
func Default() Config {
	return Config{
		Server: Server{
			HTTPAddr:       ":8080",
			GRPCAddr:       ":50051",
			RequestTimeout: 10 * time.Second,
		},
		Backend: BackendRedis,
		Redis: Redis{
			Addr:      "localhost:6379",
			KeyPrefix: "reconciler:",
			CacheTTL:  30 * time.Second,
			PoolSize:  20,
		},
		MySQL: MySQL{
			DSN:          "root:root@tcp(localhost:3306)/orders?parseTime=true",
			MaxOpenConns: 20,
			MaxIdleConns: 10,
		},
		File: File{
			Path: "snapshot.json",
		},
		Stores: []string{"orders", "pending_orders", "completed_orders"},
		Catalog: Catalog{
			Products: "products",
			Artists:  "artist_applications",
			Services: []string{"customer_service_list", "service_list"},
		},
		Merge: Merge{
			IdentityKeys: []string{"id", "_id", "orderId"},
		},
		Status: Status{
			DeliveryDays: 7,
			NearDeadline: 24 * time.Hour,
		},
		Images: Images{
			Fallbacks: Fallbacks{
				Product: "/assets/default-product.png",
				Artist:  "/assets/default-avatar.png",
				Service: "/assets/default-service.png",
				Buyer:   "/assets/default-avatar.png",
				Item:    "/assets/default-product.png",
			},
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}
