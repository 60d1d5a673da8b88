package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Juggy247/Security-Scanner-Project/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		s, err := buildScanner(store)
		if err != nil {
			return err
		}

		server := web.NewServer(s, buildClassifier(), viper.GetFloat64("ml.weight"), logger)
		mux := http.NewServeMux()
		server.Routes(mux)

		addr := viper.GetString("serve.addr")
		logger.Info("listening", zap.String("addr", addr))
		return http.ListenAndServe(addr, mux)
	},
}
