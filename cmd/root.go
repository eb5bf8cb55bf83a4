package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Yuvraj-cyborg/deduck/config"
	"github.com/Yuvraj-cyborg/deduck/internal"
	"github.com/Yuvraj-cyborg/deduck/internal/app"
	"github.com/Yuvraj-cyborg/deduck/pkg/database"
	"github.com/Yuvraj-cyborg/deduck/pkg/logger"
	"github.com/Yuvraj-cyborg/deduck/pkg/store"
)

var (
	cfgFile  string
	verbose  bool
	allFiles bool

	cfg    *config.Config
	ledger *database.Database
)

var rootCmd = &cobra.Command{
	Use:   "deduck",
	Short: "查找并隔离重复文件",
	Long: `deduck 扫描目录，按（扩展名，大小）分批后计算内容摘要查找重复文件，
深度模式下还会查找相似图片。重复文件先移动到 <dir>/.deduck_quarantine，
之后可以恢复或永久删除。`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logger.Init(level, cfg.Logging.File); err != nil {
			return err
		}

		if allFiles {
			cfg.Scanner.AllExtensions = true
		}

		logger.Get().Debug().Msgf("工作线程数: %d", cfg.Performance.Workers)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLedger()
	},
}

// Execute 执行根命令，任何错误打印一行后以非零状态退出
func Execute() {
	setupSignalHandler()

	if err := rootCmd.Execute(); err != nil {
		closeLedger()
		if errors.Is(err, internal.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件 (默认 $HOME/.deduck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	rootCmd.PersistentFlags().BoolVar(&allFiles, "all-files", false, "忽略扩展名过滤，对所有文件分批")
}

func addDirFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", "", "要处理的目录 (默认使用上次的目录)")
}

// newApp 组装命令所需的依赖。隔离记录数据库打不开时只记录警告。
func newApp(chooser app.Chooser) (*app.App, error) {
	fs := afero.NewOsFs()

	storeDir, err := config.ExpandPath(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}

	a := app.New(fs, store.NewFileStore(fs, storeDir), chooser, cfg)
	a.OnProgress = newProgress()

	dbPath, err := config.ExpandPath(cfg.Database.Path)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("无法解析数据库路径，不记录隔离文件原名")
		return a, nil
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.Get().Warn().Err(err).Str("path", dbPath).Msg("打开隔离记录数据库失败，不记录隔离文件原名")
		return a, nil
	}
	ledger = db
	a.Ledger = db

	return a, nil
}

func closeLedger() {
	if ledger == nil {
		return
	}
	if err := ledger.Close(); err != nil {
		logger.Get().Warn().Err(err).Msg("关闭数据库失败")
	}
	ledger = nil
}

func setupSignalHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Get().Warn().Msgf("收到信号 %v，已隔离的文件保留在隔离目录中", sig)
		closeLedger()
		os.Exit(1)
	}()
}
