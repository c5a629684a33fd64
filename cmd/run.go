package cmd

import (
	"context"
	"encoding/base64"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openscenario-sim/oscsim/clock"
	"github.com/openscenario-sim/oscsim/entity"
	"github.com/openscenario-sim/oscsim/internal/config"
	"github.com/openscenario-sim/oscsim/internal/mapio"
	"github.com/openscenario-sim/oscsim/internal/rpc"
	"github.com/openscenario-sim/oscsim/internal/xmlio"
	"github.com/openscenario-sim/oscsim/lanelet"
	"github.com/openscenario-sim/oscsim/scope"
	"github.com/openscenario-sim/oscsim/sim"
	"github.com/openscenario-sim/oscsim/story"
	"github.com/openscenario-sim/oscsim/trafficlight"
)

var log = logrus.WithField("module", "cmd")

var logLevels = map[string]logrus.Level{
	"trace":    logrus.TraceLevel,
	"debug":    logrus.DebugLevel,
	"info":     logrus.InfoLevel,
	"warn":     logrus.WarnLevel,
	"error":    logrus.ErrorLevel,
	"critical": logrus.FatalLevel,
	"off":      logrus.PanicLevel,
}

var (
	flagConfigPath string
	flagConfigData string
	flagLogLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "load a scenario and map, then drive the simulation loop and RPC surface",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagConfigPath, "config", "", "config file path")
	runCmd.Flags().StringVar(&flagConfigData, "config-data", "", "config file base64 encoded data")
	runCmd.Flags().StringVar(&flagLogLevel, "log.level", "info", "log level: trace debug info warn error critical off")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	level, ok := logLevels[flagLogLevel]
	if !ok {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	logrus.SetLevel(level)

	cfg, err := loadConfig()
	if err != nil {
		log.Panicf("config load err: %v", err)
	}
	log.Infof("%+v", cfg)

	mapDoc, err := mapio.Load(cfg.Input.MapFile)
	if err != nil {
		log.Panicf("map load err: %v", err)
	}
	network, err := lanelet.Load(mapDoc)
	if err != nil {
		log.Panicf("map build err: %v", err)
	}

	lights := trafficlight.NewManager()
	for _, l := range mapDoc.Lights {
		lights.Add(l)
	}

	entities := entity.NewManager()
	catalogLoader := story.NewCatalogLoader(xmlio.ParseFile)
	env := scope.NewEnvironment(cfg.Input.ScenarioFile, entities, scope.NewCatalogTable(catalogLoader))

	scenarioRoot, err := xmlio.ParseFile(cfg.Input.ScenarioFile)
	if err != nil {
		log.Panicf("scenario load err: %v", err)
	}
	storyboard, params, err := story.LoadScenario(scenarioRoot, env)
	if err != nil {
		log.Panicf("scenario load err: %v", err)
	}

	c := clock.New(cfg.Control.Step)
	evalCtx := story.NewEvalContext(entities, network, params)
	loop := sim.New(c, network, entities, lights, env, storyboard, evalCtx)

	server := rpc.NewServer(loop)
	go func() {
		if err := server.ListenAndServe(cfg.RPC.Listen); err != nil {
			log.Errorf("rpc server stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutdown signal received")
		cancel()
	}()

	if err := loop.Run(ctx); err != nil {
		log.Errorf("simulation stopped with a fatal error: %v", err)
		return err
	}
	log.Infof("scenario complete")
	return nil
}

func loadConfig() (config.Config, error) {
	var file []byte
	var err error
	switch {
	case flagConfigPath != "":
		file, err = os.ReadFile(flagConfigPath)
	case flagConfigData != "":
		file, err = base64.StdEncoding.DecodeString(flagConfigData)
	default:
		log.Panic("config file or config data must be specified")
	}
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(file)
}
