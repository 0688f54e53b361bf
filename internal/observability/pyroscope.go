package observability

import (
	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/haxfootball-room/internal/config"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

// roomProfileTypes leaves out the block profiles. The session loop spends its
// idle time parked on the inbox and would drown everything else.
var roomProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
	pyroscope.ProfileMutexCount,
	pyroscope.ProfileMutexDuration,
}

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":       cfg.AppEnv,
			"service":   cfg.ServiceName,
			"version":   cfg.ServiceVersion,
			"room_host": roomHostMode(cfg),
		},
		ProfileTypes: roomProfileTypes,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"profile_types", len(roomProfileTypes),
	)

	return profiler.Stop, nil
}

func roomHostMode(cfg config.Config) string {
	if cfg.RoomHostEnabled {
		return "webhook"
	}
	return "memory"
}
