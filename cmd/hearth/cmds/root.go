package cmds

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/aggregate"
	"github.com/hearth-labs/hearth/pkg/artifact"
	"github.com/hearth-labs/hearth/pkg/assistant"
	"github.com/hearth-labs/hearth/pkg/bus"
	"github.com/hearth-labs/hearth/pkg/directory"
	"github.com/hearth-labs/hearth/pkg/llm"
	"github.com/hearth-labs/hearth/pkg/media"
)

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "hearth is a household group assistant built on per-member conversational agents",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger once --log-level has been parsed
		initLogger(viper.GetString("log-level"))
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.hearth.yaml)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newChatCmd(),
		newAdviceCmd(),
		newTodoCmd(),
		newBulletinCmd(),
		newTranscribeCmd(),
		newDescribeImageCmd(),
		newWatchCmd(),
	)
}

func initConfig() {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".hearth")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HEARTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("store.directory-db", "hearth-directory.db")
	viper.SetDefault("store.artifact-db", "hearth-artifacts.db")
	viper.SetDefault("media.image-dir", "stored_images")
	viper.SetDefault("media.summary-dir", "image_summaries")
	viper.SetDefault("models.generation", openai.GPT4oMini)
	viper.SetDefault("models.transcription", openai.Whisper1)
	viper.SetDefault("models.vision", []string{"gpt-4o", "claude-3-5-sonnet-20240620"})
	viper.SetDefault("generation.timeout", 60*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn().Err(err).Msg("could not read config file")
		}
	}
}

func initLogger(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// app bundles the wired collaborators the subcommands run against.
type app struct {
	repo      *directory.SQLiteRepository
	artifacts *artifact.SQLiteStore
	directory *directory.Service
	agents    agentlog.Store
	service   *assistant.Service
	bus       *bus.Bus
}

func (a *app) Close() {
	if a.artifacts != nil {
		_ = a.artifacts.Close()
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
	if a.bus != nil {
		_ = a.bus.Close()
	}
}

func wireApp() (*app, error) {
	agents, err := newAgentStore()
	if err != nil {
		return nil, err
	}

	dsn, err := directory.SQLiteDSNForFile(viper.GetString("store.directory-db"))
	if err != nil {
		return nil, err
	}
	repo, err := directory.NewSQLiteRepository(dsn)
	if err != nil {
		return nil, err
	}

	var dirOpts []directory.ServiceOption
	if personasFile := viper.GetString("directory.personas-file"); personasFile != "" {
		personas, err := directory.LoadPersonas(personasFile)
		if err != nil {
			return nil, err
		}
		dirOpts = append(dirOpts, directory.WithPersonas(personas))
	}
	dir, err := directory.NewService(repo, agents, dirOpts...)
	if err != nil {
		return nil, err
	}

	artifactDSN, err := artifact.SQLiteDSNForFile(viper.GetString("store.artifact-db"))
	if err != nil {
		return nil, err
	}
	artifacts, err := artifact.NewSQLiteStore(artifactDSN)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator()
	if err != nil {
		return nil, err
	}

	aggregator, err := aggregate.New(dir, agentlog.NewReader(agents))
	if err != nil {
		return nil, err
	}

	updateBus := bus.New()
	synthesizer, err := artifact.NewSynthesizer(aggregator, artifacts, generator, artifact.WithNotifier(updateBus))
	if err != nil {
		return nil, err
	}

	transcriber, captioner, images, err := newMedia()
	if err != nil {
		return nil, err
	}

	service, err := assistant.NewService(assistant.ServiceConfig{
		Directory:   dir,
		Agents:      agents,
		Synthesizer: synthesizer,
		Transcriber: transcriber,
		Captioner:   captioner,
		Images:      images,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		repo:      repo,
		artifacts: artifacts,
		directory: dir,
		agents:    agents,
		service:   service,
		bus:       updateBus,
	}, nil
}

func newAgentStore() (agentlog.Store, error) {
	baseURL := viper.GetString("runtime.base-url")
	if baseURL == "" {
		log.Warn().Msg("no agent runtime configured, using in-memory runtime (state is lost on exit)")
		return agentlog.NewMemoryStore(), nil
	}
	var options []agentlog.HTTPStoreOption
	if token := viper.GetString("runtime.token"); token != "" {
		options = append(options, agentlog.WithToken(token))
	}
	return agentlog.NewHTTPStore(baseURL, options...)
}

func newGenerator() (llm.Generator, error) {
	apiKey := viper.GetString("openai.api-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	options := []llm.OpenAIOption{
		llm.WithModel(viper.GetString("models.generation")),
		llm.WithTimeout(viper.GetDuration("generation.timeout")),
	}
	if baseURL := viper.GetString("openai.base-url"); baseURL != "" {
		options = append(options, llm.WithBaseURL(apiKey, baseURL))
	}
	return llm.NewOpenAIGenerator(apiKey, options...)
}

func newMedia() (*media.Transcriber, *media.Captioner, *media.ImageStore, error) {
	client, err := newOpenAIClient()
	if err != nil {
		return nil, nil, nil, err
	}
	transcriber, err := media.NewTranscriber(client, viper.GetString("models.transcription"))
	if err != nil {
		return nil, nil, nil, err
	}
	captioner, err := media.NewCaptioner(client, viper.GetStringSlice("models.vision"))
	if err != nil {
		return nil, nil, nil, err
	}
	images, err := media.NewImageStore(viper.GetString("media.image-dir"), viper.GetString("media.summary-dir"))
	if err != nil {
		return nil, nil, nil, err
	}
	return transcriber, captioner, images, nil
}

func newOpenAIClient() (*openai.Client, error) {
	apiKey := viper.GetString("openai.api-key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai api key not configured")
	}
	if baseURL := viper.GetString("openai.base-url"); baseURL != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		return openai.NewClientWithConfig(cfg), nil
	}
	return openai.NewClient(apiKey), nil
}
