package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	Path              string        `mapstructure:"path"`
	ReadBufferSize    int           `mapstructure:"read_buffer_size"`
	WriteBufferSize   int           `mapstructure:"write_buffer_size"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"`
	PingInterval      time.Duration `mapstructure:"ping_interval"`
	PongTimeout       time.Duration `mapstructure:"pong_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	EnableCompression bool          `mapstructure:"enable_compression"`
}

// GameConfig 生存游戏配置
type GameConfig struct {
	Survival  SurvivalConfig  `mapstructure:"survival"`
	Zombie    ZombieConfig    `mapstructure:"zombie"`
	World     WorldConfig     `mapstructure:"world"`
	Spawn     SpawnConfig     `mapstructure:"spawn"`
	AntiCheat AntiCheatConfig `mapstructure:"anti_cheat"`
	// ScenarioFile 剧本预设种子文件路径（首次迁移时导入）
	ScenarioFile string `mapstructure:"scenario_file"`
}

// SurvivalConfig 会话与行动点配置
type SurvivalConfig struct {
	MaxHP              int           `mapstructure:"max_hp"`
	MaxAP              int           `mapstructure:"max_ap"`
	InitialAP          int           `mapstructure:"initial_ap"`
	APRegenInterval    time.Duration `mapstructure:"ap_regen_interval"`      // 安全区外
	APRegenSafeInterval time.Duration `mapstructure:"ap_regen_safe_interval"` // 安全区内
	NoiseStep          int           `mapstructure:"noise_step"`   // 每次移动增加的噪音
	MedkitHeal         int           `mapstructure:"medkit_heal"`  // 初始医疗包恢复量
	IdleSmellThreshold time.Duration `mapstructure:"idle_smell_threshold"` // 静止多久触发气味机制
}

// ZombieConfig 丧尸AI配置
type ZombieConfig struct {
	Damage            int     `mapstructure:"damage"`             // 每只攻击伤害
	DetectionRadius   float64 `mapstructure:"detection_radius"`   // 追踪侦测半径（米）
	NoiseThreshold    int     `mapstructure:"noise_threshold"`    // 噪音触发追踪阈值
	AttackRadius      float64 `mapstructure:"attack_radius"`      // 攻击半径（米）
	SmellRadius       float64 `mapstructure:"smell_radius"`       // 气味感知半径（米）
	SmellSpeedFactor  float64 `mapstructure:"smell_speed_factor"` // 气味移动速度系数
	WanderSpeedFactor float64 `mapstructure:"wander_speed_factor"` // 游荡速度系数
	VisibilityRadius  float64 `mapstructure:"visibility_radius"`  // 可见半径（米）
	FlashlightRadius  float64 `mapstructure:"flashlight_radius"`  // 手电筒探测半径（米）
	ThrowRange        float64 `mapstructure:"throw_range"`        // 书籍投掷范围（米）
}

// WorldConfig 世界生成配置
type WorldConfig struct {
	ObjectRadius        float64 `mapstructure:"object_radius"`         // 默认交互半径（米）
	ExtractionMin       float64 `mapstructure:"extraction_min"`        // 撤离营地距离带
	ExtractionMax       float64 `mapstructure:"extraction_max"`
	ExtractionUnlockMoves int   `mapstructure:"extraction_unlock_moves"` // 撤离解锁移动次数
	CampMin             float64 `mapstructure:"camp_min"` // 普通营地距离带
	CampMax             float64 `mapstructure:"camp_max"`
	FlashlightChance    int     `mapstructure:"flashlight_chance"` // 商店/加油站出手电筒概率 0-100
	Bands               map[string]ObjectBand `mapstructure:"bands"`
}

// ObjectBand 某类世界对象的数量与距离带
type ObjectBand struct {
	CountMin    int     `mapstructure:"count_min"`
	CountMax    int     `mapstructure:"count_max"`
	DistanceMin float64 `mapstructure:"distance_min"`
	DistanceMax float64 `mapstructure:"distance_max"`
}

// SpawnConfig 兜底刷新配置（规则未命中时的保底难度）
type SpawnConfig struct {
	FallbackCountMin int     `mapstructure:"fallback_count_min"`
	FallbackCountMax int     `mapstructure:"fallback_count_max"`
	DistanceMin      float64 `mapstructure:"distance_min"`
	DistanceMax      float64 `mapstructure:"distance_max"`
	Speed            float64 `mapstructure:"speed"`
}

// AntiCheatConfig 防作弊校验配置
type AntiCheatConfig struct {
	// SurvivalTimeTolerance 生存时长上报允许的网络延迟容差
	SurvivalTimeTolerance time.Duration `mapstructure:"survival_time_tolerance"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	RefreshHours int    `mapstructure:"refresh_hours"`
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		v = viper.New()

		// 设置配置文件路径
		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./config")
			v.AddConfigPath(".")
		}

		// 设置环境变量前缀
		v.SetEnvPrefix("ZOMBIE_WALK")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		// 设置默认值
		setDefaults(v)

		// 读取配置文件
		if err = v.ReadInConfig(); err != nil {
			// 如果配置文件不存在，使用默认配置
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		// 解析配置到结构体
		cfg = &Config{}
		err = v.Unmarshal(cfg)
	})

	return err
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 数据库默认配置
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/zombie-walk.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "info")
	v.SetDefault("database.auto_migrate", true)

	// WebSocket默认配置
	v.SetDefault("websocket.path", "/ws")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.max_message_size", 8192)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.enable_compression", true)

	// 生存游戏默认配置
	v.SetDefault("game.survival.max_hp", 100)
	v.SetDefault("game.survival.max_ap", 10)
	v.SetDefault("game.survival.initial_ap", 10)
	v.SetDefault("game.survival.ap_regen_interval", "60s")
	v.SetDefault("game.survival.ap_regen_safe_interval", "30s")
	v.SetDefault("game.survival.noise_step", 10)
	v.SetDefault("game.survival.medkit_heal", 30)
	v.SetDefault("game.survival.idle_smell_threshold", "120s")

	v.SetDefault("game.zombie.damage", 10)
	v.SetDefault("game.zombie.detection_radius", 150)
	v.SetDefault("game.zombie.noise_threshold", 70)
	v.SetDefault("game.zombie.attack_radius", 50)
	v.SetDefault("game.zombie.smell_radius", 500)
	v.SetDefault("game.zombie.smell_speed_factor", 0.15)
	v.SetDefault("game.zombie.wander_speed_factor", 0.3)
	v.SetDefault("game.zombie.visibility_radius", 300)
	v.SetDefault("game.zombie.flashlight_radius", 1000)
	v.SetDefault("game.zombie.throw_range", 100)

	v.SetDefault("game.world.object_radius", 50)
	v.SetDefault("game.world.extraction_min", 300)
	v.SetDefault("game.world.extraction_max", 500)
	v.SetDefault("game.world.extraction_unlock_moves", 20)
	v.SetDefault("game.world.camp_min", 150)
	v.SetDefault("game.world.camp_max", 300)
	v.SetDefault("game.world.flashlight_chance", 30)
	v.SetDefault("game.world.bands", map[string]map[string]interface{}{
		"shelter":     {"count_min": 3, "count_max": 5, "distance_min": 400, "distance_max": 800},
		"shop":        {"count_min": 2, "count_max": 4, "distance_min": 500, "distance_max": 1000},
		"pharmacy":    {"count_min": 1, "count_max": 3, "distance_min": 600, "distance_max": 1200},
		"gas_station": {"count_min": 1, "count_max": 2, "distance_min": 800, "distance_max": 1500},
		"library":     {"count_min": 1, "count_max": 2, "distance_min": 1000, "distance_max": 1800},
		"bookstore":   {"count_min": 1, "count_max": 2, "distance_min": 1200, "distance_max": 2000},
	})

	v.SetDefault("game.spawn.fallback_count_min", 3)
	v.SetDefault("game.spawn.fallback_count_max", 7)
	v.SetDefault("game.spawn.distance_min", 200)
	v.SetDefault("game.spawn.distance_max", 500)
	v.SetDefault("game.spawn.speed", 50)

	v.SetDefault("game.anti_cheat.survival_time_tolerance", "5s")
	v.SetDefault("game.scenario_file", "./config/scenarios.yaml")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "both")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "zombie-walk.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.compress", true)

	// 安全默认配置
	v.SetDefault("security.jwt.secret", "change-me-in-production")
	v.SetDefault("security.jwt.expire_hours", 24)
	v.SetDefault("security.jwt.refresh_hours", 168)
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		defer mu.Unlock()

		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		cfg = newCfg

		if callback != nil {
			callback(cfg)
		}

		fmt.Println("配置已重新加载")
	})
}

// DefaultGameConfig 返回默认游戏配置（测试与独立使用场景）
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Survival: SurvivalConfig{
			MaxHP:               100,
			MaxAP:               10,
			InitialAP:           10,
			APRegenInterval:     60 * time.Second,
			APRegenSafeInterval: 30 * time.Second,
			NoiseStep:           10,
			MedkitHeal:          30,
			IdleSmellThreshold:  120 * time.Second,
		},
		Zombie: ZombieConfig{
			Damage:            10,
			DetectionRadius:   150,
			NoiseThreshold:    70,
			AttackRadius:      50,
			SmellRadius:       500,
			SmellSpeedFactor:  0.15,
			WanderSpeedFactor: 0.3,
			VisibilityRadius:  300,
			FlashlightRadius:  1000,
			ThrowRange:        100,
		},
		World: WorldConfig{
			ObjectRadius:          50,
			ExtractionMin:         300,
			ExtractionMax:         500,
			ExtractionUnlockMoves: 20,
			CampMin:               150,
			CampMax:               300,
			FlashlightChance:      30,
			Bands: map[string]ObjectBand{
				"shelter":     {CountMin: 3, CountMax: 5, DistanceMin: 400, DistanceMax: 800},
				"shop":        {CountMin: 2, CountMax: 4, DistanceMin: 500, DistanceMax: 1000},
				"pharmacy":    {CountMin: 1, CountMax: 3, DistanceMin: 600, DistanceMax: 1200},
				"gas_station": {CountMin: 1, CountMax: 2, DistanceMin: 800, DistanceMax: 1500},
				"library":     {CountMin: 1, CountMax: 2, DistanceMin: 1000, DistanceMax: 1800},
				"bookstore":   {CountMin: 1, CountMax: 2, DistanceMin: 1200, DistanceMax: 2000},
			},
		},
		Spawn: SpawnConfig{
			FallbackCountMin: 3,
			FallbackCountMax: 7,
			DistanceMin:      200,
			DistanceMax:      500,
			Speed:            50,
		},
		AntiCheat: AntiCheatConfig{
			SurvivalTimeTolerance: 5 * time.Second,
		},
		ScenarioFile: "./config/scenarios.yaml",
	}
}

// GetString 获取字符串配置
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool 获取布尔配置
func GetBool(key string) bool {
	return v.GetBool(key)
}

// GetDuration 获取时间间隔配置
func GetDuration(key string) time.Duration {
	return v.GetDuration(key)
}

// IsSet 检查配置项是否存在
func IsSet(key string) bool {
	return v.IsSet(key)
}
