package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Watch registers a file watcher on the loaded config. Only the per-source
// rate limits are hot-reloadable; the weight table, penalty knobs and
// timeouts stay fixed for the lifetime of the process so that in-flight
// analyses keep a single consistent view.
func Watch(v *viper.Viper, logger *zap.Logger, onRateLimits func(map[string]int)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		rpm := map[string]int{}
		for src, n := range v.GetStringMap("sources.rate_rpm") {
			switch i := n.(type) {
			case int:
				rpm[src] = i
			case float64:
				rpm[src] = int(i)
			}
		}
		logger.Info("config file changed, applying source rate limits",
			zap.String("file", e.Name),
			zap.Int("sources", len(rpm)))
		onRateLimits(rpm)
	})
	v.WatchConfig()
}
