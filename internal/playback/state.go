package playback

// State - состояние курсора воспроизведения
type State int

const (
	// StateIdle - источник еще не привязан
	StateIdle State = iota
	// StateLoading - идет проверка источника
	StateLoading
	// StateReadyPaused - источник привязан, воспроизведение остановлено
	StateReadyPaused
	// StateReadyPlaying - источник привязан и играет
	StateReadyPlaying
	// StateError - загрузка не удалась, а привязанного источника нет
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReadyPaused:
		return "ready-paused"
	case StateReadyPlaying:
		return "ready-playing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Cursor - позиция в отфильтрованном списке и признак воспроизведения
type Cursor struct {
	Index     int
	IsPlaying bool
}
