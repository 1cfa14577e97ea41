package factories

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/go-github/v57/github"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/xanzy/go-gitlab"
	"golang.org/x/oauth2"
)

// OpenSQL opens a database handle. Connections are made lazily, so a
// configuration can describe a database that is not reachable yet.
func OpenSQL(dsn string, driver string, maxOpenConns int) (*sql.DB, error) {
	if driver == "" {
		driver = "sqlite3"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

type MQTTOptions struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	CleanSession   *bool
	AutoReconnect  *bool
}

// MQTTClient builds a paho client from options. The client is returned
// unconnected; callers decide when to Connect.
func MQTTClient(opts MQTTOptions) (pahomqtt.Client, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("broker is required")
	}
	options := pahomqtt.NewClientOptions().AddBroker(opts.Broker)
	if opts.ClientID != "" {
		options.SetClientID(opts.ClientID)
	}
	if opts.Username != "" {
		options.SetUsername(opts.Username)
		options.SetPassword(opts.Password)
	}
	if opts.KeepAlive > 0 {
		options.SetKeepAlive(opts.KeepAlive)
	}
	if opts.ConnectTimeout > 0 {
		options.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.CleanSession != nil {
		options.SetCleanSession(*opts.CleanSession)
	}
	if opts.AutoReconnect != nil {
		options.SetAutoReconnect(*opts.AutoReconnect)
	}
	return pahomqtt.NewClient(options), nil
}

type InfluxDBOptions struct {
	URL           string
	Token         string
	BatchSize     uint
	FlushInterval time.Duration
	HTTPTimeout   time.Duration
}

// InfluxDBClient builds an InfluxDB v2 client. No request is sent until
// the client is used.
func InfluxDBClient(opts InfluxDBOptions) (influxdb2.Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	options := influxdb2.DefaultOptions()
	if opts.BatchSize > 0 {
		options.SetBatchSize(opts.BatchSize)
	}
	if opts.FlushInterval > 0 {
		options.SetFlushInterval(uint(opts.FlushInterval.Milliseconds()))
	}
	if opts.HTTPTimeout > 0 {
		options.SetHTTPRequestTimeout(uint(opts.HTTPTimeout.Seconds()))
	}
	return influxdb2.NewClientWithOptions(opts.URL, opts.Token, options), nil
}

type GitHubOptions struct {
	Token     string
	BaseURL   string
	UploadURL string
}

// GitHubClient builds a GitHub API client, authenticated when a token is
// given. BaseURL selects a GitHub Enterprise server.
func GitHubClient(ctx context.Context, opts GitHubOptions) (*github.Client, error) {
	var httpClient *http.Client
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(httpClient)
	if opts.BaseURL == "" {
		return client, nil
	}
	upload := opts.UploadURL
	if upload == "" {
		upload = opts.BaseURL
	}
	return client.WithEnterpriseURLs(opts.BaseURL, upload)
}

type GitLabOptions struct {
	Token   string
	BaseURL string
}

func GitLabClient(opts GitLabOptions) (*gitlab.Client, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if opts.BaseURL != "" {
		return gitlab.NewClient(opts.Token, gitlab.WithBaseURL(opts.BaseURL))
	}
	return gitlab.NewClient(opts.Token)
}
