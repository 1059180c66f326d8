package get_slot_availability

import (
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
)

// Request модель запроса доступности слотов
type Request struct {
	PackageID int64
	Date      time.Time // Любая дата внутри интересующей недели
}

// Slot доступность одного слота недели
type Slot struct {
	DayOffset  int
	TimeOffset domain.TimeOffset
	Date       time.Time // Начало календарного дня слота в зоне клиники
	Remaining  int       // Свободные места (не меньше нуля)
	Total      int       // maxSlotPerPeriod пакета
}

// IsFull сообщает, что мест в слоте не осталось
func (s Slot) IsFull() bool {
	return s.Remaining <= 0
}

// Response доступность всех слотов недели для пакета
type Response struct {
	PackageID int64
	WeekFrom  time.Time
	WeekTo    time.Time
	Slots     []Slot // 14 слотов: 7 дней * (утро, после обеда)
}
