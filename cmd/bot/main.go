package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mavis-digital/hrbot/modules/hr/infrastructure/persistence"
	"github.com/mavis-digital/hrbot/modules/hr/presentation/controllers"
	"github.com/mavis-digital/hrbot/modules/hr/services"
	"github.com/mavis-digital/hrbot/pkg/cache"
	"github.com/mavis-digital/hrbot/pkg/configuration"
	"github.com/mavis-digital/hrbot/pkg/eventbus"
	"github.com/mavis-digital/hrbot/pkg/metrics"
	"github.com/mavis-digital/hrbot/pkg/recordstore"
	"github.com/mavis-digital/hrbot/pkg/schedule"
	"github.com/mavis-digital/hrbot/pkg/server"
	"github.com/mavis-digital/hrbot/pkg/workcal"
)

func main() {
	conf := configuration.Use()
	defer conf.Unload()
	log := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncTimes, err := schedule.ParseTimes(conf.Sync.Times)
	if err != nil {
		log.WithError(err).Fatal("invalid SYNC_TIMES")
	}
	rolesCheckTimes, err := schedule.ParseTimes(conf.Sync.RolesCheckTime)
	if err != nil {
		log.WithError(err).Fatal("invalid ROLES_CHECK_TIME")
	}

	cal := workcal.Default()
	if conf.HolidayFile != "" {
		f, err := os.Open(conf.HolidayFile)
		if err != nil {
			log.WithError(err).Fatal("open holiday calendar")
		}
		cal, err = workcal.Load(f)
		_ = f.Close()
		if err != nil {
			log.WithError(err).Fatal("load holiday calendar")
		}
	}

	store := recordstore.New(
		conf.RecordStore.BaseURL,
		conf.RecordStore.APIToken,
		log,
		recordstore.WithHTTPClient(&http.Client{Timeout: conf.RecordStore.Timeout}),
	)

	sourceRepo := persistence.NewSourceRepository(store, conf.Tables.Source)
	pivotRepo := persistence.NewPivotRepository(store, conf.Tables.Pivot)
	accessRepo := persistence.NewAccessRepository(store, conf.Tables.Auth)
	pulseRepo := persistence.NewPulseRepository(store, conf.Tables.PulseTasks)

	bus := eventbus.NewEventPublisher(log)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	services.ObserveSync(bus, metrics.NewSync(registry))

	roles := cache.NewRoles(conf.AuthCacheTTL)
	defer roles.Stop()

	pulseSvc := services.NewPulseService(pulseRepo, bus, log, cal, conf.Sync.PulseRetry)
	syncSvc := services.NewSyncService(sourceRepo, pivotRepo, pulseSvc, bus, log)
	accessSvc := services.NewAccessService(pivotRepo, accessRepo, roles, bus, log, conf.Sync.SettlingDelay)
	checker := services.NewRoleChecker(pivotRepo, accessRepo, roles, log)

	go schedule.RunDaily(ctx, log, "1c-sync", syncTimes, func(ctx context.Context) error {
		report, err := syncSvc.SyncNow(ctx)
		if err != nil {
			return err
		}
		log.WithField("report", report).Info("scheduled sync finished")
		return accessSvc.Sync(ctx)
	})

	go schedule.RunDaily(ctx, log, "role-check", rolesCheckTimes, func(ctx context.Context) error {
		_, err := checker.CheckNow(ctx)
		return err
	})

	ops := &server.HTTPServer{
		Controllers: []server.Controller{
			&controllers.OpsController{
				Sync:     syncSvc,
				Access:   accessSvc,
				Checker:  checker,
				Registry: registry,
				Log:      log,
			},
		},
		Log: log,
	}

	if err := ops.Start(ctx, conf.SocketAddress); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("ops server stopped")
	}

	// Give in-flight jobs a moment to notice the cancelled context.
	time.Sleep(100 * time.Millisecond)
	log.Info("shutdown complete")
}
