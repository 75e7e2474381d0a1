package export

// Stage is one step of an export.
type Stage string

const (
	StagePreparing    Stage = "preparing"
	StageWatermarking Stage = "watermarking"
	StageConverting   Stage = "converting"
	StageDownloading  Stage = "downloading"
	StageComplete     Stage = "complete"
)

// Percent returns the fixed progress floor of the stage.
func (s Stage) Percent() int {
	switch s {
	case StageWatermarking:
		return 25
	case StageConverting:
		return 50
	case StageDownloading:
		return 75
	case StageComplete:
		return 100
	default:
		return 0
	}
}

func (s Stage) message() string {
	switch s {
	case StageWatermarking:
		return "Adding watermark..."
	case StageConverting:
		return "Converting image..."
	case StageDownloading:
		return "Downloading..."
	case StageComplete:
		return "Export complete."
	default:
		return "Preparing export..."
	}
}

// Progress is reported once per stage, in order.
type Progress struct {
	Stage   Stage  `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// ProgressFunc receives progress updates on the exporting goroutine.
type ProgressFunc func(Progress)
