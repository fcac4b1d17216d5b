package state

import "time"

// Command — намерение, влияющее на воспроизведение. Команды добавляются
// любым производителем (обработка ввода, агент, фоновые загрузки), но
// снимаются и применяются только главным циклом, один раз за тик, строго
// в порядке FIFO. Эта дисциплина единственного потребителя не дает двум
// производителям наперегонки трогать контроллер воспроизведения.
type Command interface {
	isCommand()
}

// PlayFileCommand запускает воспроизведение локального файла
type PlayFileCommand struct {
	Path     string
	Title    string
	Artist   string
	URL      string
	Duration time.Duration
}

// SkipCommand пропускает текущий трек
type SkipCommand struct{}

// PauseCommand ставит воспроизведение на паузу
type PauseCommand struct{}

// ResumeCommand возобновляет воспроизведение
type ResumeCommand struct{}

// SetVolumeCommand устанавливает громкость (0-100)
type SetVolumeCommand struct {
	Level int
}

func (PlayFileCommand) isCommand()  {}
func (SkipCommand) isCommand()      {}
func (PauseCommand) isCommand()     {}
func (ResumeCommand) isCommand()    {}
func (SetVolumeCommand) isCommand() {}
