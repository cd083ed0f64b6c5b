package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	YtdlpPath     string `env:"YTDLP_PATH"     envDefault:"yt-dlp"`
	YtdlpFormat   string `env:"YTDLP_FORMAT"   envDefault:"webm[abr>0]/bestaudio/best"`
	YtdlpUsername string `env:"YTDLP_USERNAME"`
	YtdlpPassword string `env:"YTDLP_PASSWORD"`
	FfmpegPath    string `env:"FFMPEG_PATH"    envDefault:"ffmpeg"`

	SchedulerInterval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"1s"`
	TrackGracePeriod  time.Duration `env:"TRACK_GRACE_PERIOD" envDefault:"10s"`

	NotifyRate   float64 `env:"NOTIFY_RATE"   envDefault:"1"`
	NotifyBurst  int     `env:"NOTIFY_BURST"  envDefault:"5"`
	NotifyBuffer int     `env:"NOTIFY_BUFFER" envDefault:"100"`

	MechanicusURL string `env:"MECHANICUS_URL" envDefault:"https://www.youtube.com/watch?v=9gIMZ0WyY88"`
}
