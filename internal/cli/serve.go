package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lacquerai/deriv/internal/server"
	"github.com/lacquerai/deriv/internal/style"
)

var (
	serveMetrics bool
	serveCORS    bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing parsing, differentiation and evaluation.

The server provides:
- REST API under /api/v1 (parse, derivative, evaluate, functions)
- WebSocket streaming of derivatives at /api/v1/stream
- Prometheus metrics endpoint at /metrics
- A bounded cache of parsed expressions so repeated requests reuse results`,
	Example: `
  drv serve                          # Listen on localhost:8080
  drv serve --port 9000 --host 0.0.0.0
  drv serve --cache-size 0           # Disable the expression cache`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config := server.DefaultConfig()
		config.Host = viper.GetString("serve.host")
		config.Port = viper.GetInt("serve.port")
		config.CacheSize = viper.GetInt("serve.cache-size")
		config.MaxExpressionLength = viper.GetInt("serve.max-expression")
		config.EnableMetrics = serveMetrics
		config.EnableCORS = serveCORS
		config.Debug = viper.GetBool("debug")

		srv := server.New(config)
		if !viper.GetBool("quiet") {
			w := cmd.OutOrStdout()
			style.Success(w, fmt.Sprintf("deriv server starting at http://%s", srv.GetAddr()))
			fmt.Fprintf(w, "🚀 API: http://%s/api/v1\n", srv.GetAddr())
			if serveMetrics {
				fmt.Fprintf(w, "📊 Metrics: http://%s/metrics\n", srv.GetAddr())
			}
		}

		return srv.StartWithGracefulShutdown(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "server port")
	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().Int("cache-size", 1024, "number of parsed expressions to keep")
	_ = viper.BindPFlag("serve.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("serve.host", serveCmd.Flags().Lookup("host"))
	serveCmd.Flags().Int("max-expression", 1024, "longest expression accepted, in bytes (0 for no limit)")
	_ = viper.BindPFlag("serve.cache-size", serveCmd.Flags().Lookup("cache-size"))
	_ = viper.BindPFlag("serve.max-expression", serveCmd.Flags().Lookup("max-expression"))

	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", true, "enable CORS headers")
}
