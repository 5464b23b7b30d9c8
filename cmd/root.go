package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd 是所有子命令的根命令
var rootCmd = &cobra.Command{
	Use:   "itemview",
	Short: "easy swap single item view service.",
	Long:  "easy swap single item view service.",
}

// Execute 解析命令行参数并执行对应的子命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "conf", "", "config file (default is ./config/config.toml)")
}

// initConfig 定位并读取配置文件，供子命令通过 viper 解析
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// 优先当前目录的 config/，其次用户主目录
		viper.AddConfigPath("./config")
		viper.AddConfigPath(home)
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
