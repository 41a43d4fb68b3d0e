// Package dependency wires core noflood services using go.uber.org/dig.
package dependency

import (
	"context"
	"errors"
	"io"

	"go.uber.org/dig"

	"github.com/back8/github-scp-079-scp-079-noflood/internal/bus"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/channels"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/config"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/cron"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/exchange"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/noflood"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/store"
	"github.com/back8/github-scp-079-scp-079-noflood/internal/worker"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	msgBus    *bus.MessageBus
	pool      *worker.Pool
	db        *store.SQLite
	store     *store.Store
	publisher exchange.Publisher
	consumer  exchange.Consumer
	manager   *channels.Manager
	service   *noflood.Service
	router    *noflood.Router
	receiver  *noflood.Receiver
	cronSvc   *cron.Service
}

func (c *Container) MessageBus() *bus.MessageBus       { return c.msgBus }
func (c *Container) Pool() *worker.Pool                { return c.pool }
func (c *Container) Store() *store.Store               { return c.store }
func (c *Container) Publisher() exchange.Publisher     { return c.publisher }
func (c *Container) Consumer() exchange.Consumer       { return c.consumer }
func (c *Container) ChannelManager() *channels.Manager { return c.manager }
func (c *Container) Service() *noflood.Service         { return c.service }
func (c *Container) Router() *noflood.Router           { return c.router }
func (c *Container) Receiver() *noflood.Receiver       { return c.receiver }
func (c *Container) CronService() *cron.Service        { return c.cronSvc }

// Close waits for pending side effects, then releases the database and the
// exchange connections.
func (c *Container) Close() error {
	c.pool.Wait()
	var errs []error
	if closer, ok := c.publisher.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, c.consumer.Close(), c.db.Close())
	return errors.Join(errs...)
}

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newMessageBus,
		func(b *bus.MessageBus) bus.Bus { return b },
		newPool,
		newSQLite,
		newStore,
		newPublisher,
		newConsumer,
		newChannelManager,
		newMessenger,
		newAuthorizer,
		newReporter,
		newBroker,
		newService,
		newRouter,
		newReceiver,
		newCronService,
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		msgBus *bus.MessageBus,
		pool *worker.Pool,
		db *store.SQLite,
		st *store.Store,
		pub exchange.Publisher,
		con exchange.Consumer,
		mgr *channels.Manager,
		svc *noflood.Service,
		router *noflood.Router,
		receiver *noflood.Receiver,
		cronSvc *cron.Service,
	) {
		result = &Container{
			msgBus:    msgBus,
			pool:      pool,
			db:        db,
			store:     st,
			publisher: pub,
			consumer:  con,
			manager:   mgr,
			service:   svc,
			router:    router,
			receiver:  receiver,
			cronSvc:   cronSvc,
		}
	})
	return result, err
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newPool(cfg *config.Config) *worker.Pool {
	return worker.NewPool(cfg.Worker.MaxConcurrent)
}

func newSQLite(cfg *config.Config) (*store.SQLite, error) {
	return store.OpenSQLite(cfg.Store.StorePath())
}

func newStore(db *store.SQLite) (*store.Store, error) {
	st := store.New(db)
	if err := st.Load(context.Background()); err != nil {
		return nil, err
	}
	return st, nil
}

func newPublisher(cfg *config.Config) exchange.Publisher {
	if !cfg.Exchange.Enabled {
		return exchange.DisabledPublisher{}
	}
	return exchange.NewKafkaPublisher(cfg.Exchange.Brokers, cfg.Exchange.Topic)
}

// newConsumer returns an idle in-process consumer when the exchange is off.
func newConsumer(cfg *config.Config) exchange.Consumer {
	if !cfg.Exchange.Enabled {
		return exchange.NewChannelConsumer()
	}
	return exchange.NewKafkaConsumer(cfg.Exchange.Brokers, cfg.Exchange.Topic, cfg.Exchange.ConsumerGroup)
}

func newChannelManager(cfg *config.Config, b bus.Bus) *channels.Manager {
	return channels.NewManager(cfg, b)
}

func newMessenger(b bus.Bus) noflood.Messenger {
	return noflood.NewBusMessenger(b)
}

func newAuthorizer(m *channels.Manager) noflood.Authorizer {
	return m
}

func newReporter(cfg *config.Config, msgr noflood.Messenger, pool *worker.Pool) *noflood.Reporter {
	return noflood.NewReporter(cfg.Project, msgr, pool)
}

func newBroker(cfg *config.Config, st *store.Store, pub exchange.Publisher, pool *worker.Pool) *noflood.Broker {
	return noflood.NewBroker(st, pub, pool, cfg.Project, cfg.Noflood.Authority, cfg.Noflood.LockTTL)
}

func newService(
	cfg *config.Config,
	st *store.Store,
	broker *noflood.Broker,
	reporter *noflood.Reporter,
	msgr noflood.Messenger,
	auth noflood.Authorizer,
	pool *worker.Pool,
) *noflood.Service {
	return noflood.NewService(cfg.Noflood, cfg.Project, st, broker, reporter, msgr, auth, pool)
}

func newRouter(cfg *config.Config, b bus.Bus, svc *noflood.Service) *noflood.Router {
	return noflood.NewRouter(b, svc, cfg.Noflood, cfg.Project)
}

func newReceiver(cfg *config.Config, st *store.Store, reporter *noflood.Reporter) *noflood.Receiver {
	return noflood.NewReceiver(st, reporter, cfg.Noflood, cfg.Project, bus.ChannelTelegram)
}

func newCronService(cfg *config.Config, st *store.Store, pub exchange.Publisher) (*cron.Service, error) {
	svc := cron.NewService(config.CronStatePath())
	backup := noflood.BackupJob(st, pub, cfg.Project.Sender, cfg.Noflood.BackupReceiver)
	if err := svc.AddJob("backup", cfg.Cron.Backup, backup); err != nil {
		return nil, err
	}
	return svc, nil
}
