package config

type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Ellie    EllieConfig    `mapstructure:"ellie"`
	Transfer TransferConfig `mapstructure:"transfer"`
}

type SourceConfig struct {
	Driver         string `mapstructure:"driver"`
	URL            string `mapstructure:"url"`
	Account        string `mapstructure:"account"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Database       string `mapstructure:"database"`
	Warehouse      string `mapstructure:"warehouse"`
	Role           string `mapstructure:"role"`
	ConnectionMode string `mapstructure:"connection_mode"`
	FedAuth        string `mapstructure:"fedauth"`
}

type EllieConfig struct {
	Organization string `mapstructure:"organization"`
	Token        string `mapstructure:"token"`
	APIVersion   string `mapstructure:"api_version"`
}

type TransferConfig struct {
	Schemas      []string `mapstructure:"schemas"`
	ModelName    string   `mapstructure:"model_name"`
	ModelID      string   `mapstructure:"model_id"`
	FolderID     int      `mapstructure:"folder_id"`
	Level        string   `mapstructure:"level"`
	IncludeViews bool     `mapstructure:"include_views"`
	FKSuffix     string   `mapstructure:"fk_suffix"`
	MaxEntities  int      `mapstructure:"max_entities"`
}
