package main

import "github.com/cuemby/ecs/pkg/ecslog"

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	ecslog.Init(ecslog.Config{
		Level:      ecslog.Level(logLevel),
		JSONOutput: logJSON,
	})
}
