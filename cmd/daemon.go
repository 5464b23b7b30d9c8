package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // 引入 pprof 用于性能分析
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
)

// DaemonCmd 定义了 "daemon" 子命令
// 启动后会加载目标 Item 的快照、订阅链上事件并对外提供合并后的实时视图
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "serve live view of a single easy swap item.",
	Long:  "serve live view of a single easy swap item.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 服务启动或运行过程中的错误通过该 chan 通知
		onSvcExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. 读取并解析配置文件 (config.toml)
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to unmarshal config", zap.Error(err))
				onSvcExit <- err
				return
			}

			// 2. 初始化日志模块
			_, err = xzap.SetUp(*cfg.Log)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to set up logger", zap.Error(err))
				onSvcExit <- err
				return
			}

			xzap.WithContext(ctx).Info("item view server start", zap.Any("config", cfg))

			// 3. 初始化服务：链客户端、查询服务客户端、内存状态等
			s, err := service.New(ctx, cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create item view server", zap.Error(err))
				onSvcExit <- err
				return
			}

			// 4. 启动服务：加载快照、订阅事件、启动时钟循环与 API
			if err := s.Start(); err != nil {
				xzap.WithContext(ctx).Error("Failed to start item view server", zap.Error(err))
				onSvcExit <- err
				return
			}

			// 5. 可选开启 pprof 性能监控
			if cfg.Monitor.PprofEnable {
				http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil)
			}
		}()

		onSignal := make(chan os.Signal, 1)
		// 监听 SIGINT / SIGTERM，实现优雅退出
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			switch sig {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM:
				cancel()
				xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
			}
		case err := <-onSvcExit:
			cancel()
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(DaemonCmd)
}
