package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
)

// Config 定义了应用程序的全局配置结构
type Config struct {
	Monitor     *Monitor     `toml:"monitor" mapstructure:"monitor" json:"monitor"`
	Log         *xzap.Config `toml:"log" mapstructure:"log" json:"log"`
	Kv          *KvConf      `toml:"kv" mapstructure:"kv" json:"kv"`
	Api         ApiCfg       `toml:"api" mapstructure:"api" json:"api"`
	AnkrCfg     AnkrCfg      `toml:"ankr_cfg" mapstructure:"ankr_cfg" json:"ankr_cfg"`
	ChainCfg    ChainCfg     `toml:"chain_cfg" mapstructure:"chain_cfg" json:"chain_cfg"`
	ContractCfg ContractCfg  `toml:"contract_cfg" mapstructure:"contract_cfg" json:"contract_cfg"`
	ItemCfg     ItemCfg      `toml:"item_cfg" mapstructure:"item_cfg" json:"item_cfg"`
	AccountCfg  AccountCfg   `toml:"account_cfg" mapstructure:"account_cfg" json:"account_cfg"`
	QueryCfg    QueryCfg     `toml:"query_cfg" mapstructure:"query_cfg" json:"query_cfg"`
	ProjectCfg  ProjectCfg   `toml:"project_cfg" mapstructure:"project_cfg" json:"project_cfg"`
}

// ChainCfg 链的基本信息
type ChainCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name"` // 链名称 (如: eth, sepolia)
	ID   int64  `toml:"id" mapstructure:"id" json:"id"`       // Chain ID
}

// ContractCfg 相关合约地址
type ContractCfg struct {
	MarketplaceAddress  string `toml:"marketplace_address" mapstructure:"marketplace_address" json:"marketplace_address"`       // 挂单/报价市场合约
	AuctionAddress      string `toml:"auction_address" mapstructure:"auction_address" json:"auction_address"`                   // 拍卖行合约
	WrappedTokenAddress string `toml:"wrapped_token_address" mapstructure:"wrapped_token_address" json:"wrapped_token_address"` // 报价支付代币 (WETH 等)
}

// ItemCfg 本实例跟踪的 Item 身份
type ItemCfg struct {
	CollectionAddress string `toml:"collection_address" mapstructure:"collection_address" json:"collection_address"`
	TokenID           string `toml:"token_id" mapstructure:"token_id" json:"token_id"`
}

// AccountCfg 当前连接账户；私钥可为空 (只读模式，所有写操作将被拒绝)
type AccountCfg struct {
	Address    string `toml:"address" mapstructure:"address" json:"address"`
	PrivateKey string `toml:"private_key" mapstructure:"private_key" json:"-"`
}

// QueryCfg 查询服务配置
type QueryCfg struct {
	BaseUrl        string `toml:"base_url" mapstructure:"base_url" json:"base_url"`
	TimeoutSeconds int64  `toml:"timeout_seconds" mapstructure:"timeout_seconds" json:"timeout_seconds"`
}

// ApiCfg HTTP 服务配置
type ApiCfg struct {
	Port string `toml:"port" mapstructure:"port" json:"port"` // 形如 ":9100"
}

// Monitor 监控配置
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"`
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`
}

// AnkrCfg RPC 节点配置
type AnkrCfg struct {
	ApiKey       string `toml:"api_key" mapstructure:"api_key" json:"api_key"`
	HttpsUrl     string `toml:"https_url" mapstructure:"https_url" json:"https_url"`
	WebsocketUrl string `toml:"websocket_url" mapstructure:"websocket_url" json:"websocket_url"`
	EnableWss    bool   `toml:"enable_wss" mapstructure:"enable_wss" json:"enable_wss"`
}

// ProjectCfg 项目配置
type ProjectCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name"`
}

// KvConf Key-Value 存储配置
type KvConf struct {
	Redis []*Redis `toml:"redis" json:"redis"`
}

// Redis 连接配置
type Redis struct {
	Host string `toml:"host" json:"host"`
	Type string `toml:"type" json:"type"` // node / cluster
	Pass string `toml:"pass" json:"pass"`
}

// UnmarshalConfig 加载并解析指定路径的配置文件
func UnmarshalConfig(configFilePath string) (*Config, error) {
	viper.SetConfigFile(configFilePath)
	viper.SetConfigType("toml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("CNFT")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// UnmarshalCmdConfig 解析已由 rootCmd 定位好的默认配置文件
func UnmarshalCmdConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, err
	}

	return &c, nil
}
