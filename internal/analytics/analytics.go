package analytics

import (
	"log"
	"time"
)

// Event — единичное событие админ-действия
type Event struct {
	Name   string
	Actor  string
	Fields map[string]string
	At     time.Time
}

// Logger пишет события в журнал асинхронно. Отправка никогда не блокирует
// вызывающего: при переполненном буфере событие молча отбрасывается.
// На корректность основного пути событие не влияет.
type Logger struct {
	events chan Event
	done   chan struct{}
}

func NewLogger(buffer int) *Logger {
	l := &Logger{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	go l.drain()
	return l
}

func (l *Logger) drain() {
	defer close(l.done)
	for ev := range l.events {
		log.Printf("[Analytics] %s actor=%s fields=%v at=%s",
			ev.Name, ev.Actor, ev.Fields, ev.At.Format(time.RFC3339))
	}
}

// Track отправляет событие, не дожидаясь записи. Безопасен на nil-логгере.
func (l *Logger) Track(name, actor string, fields map[string]string) {
	if l == nil {
		return
	}
	ev := Event{Name: name, Actor: actor, Fields: fields, At: time.Now()}
	select {
	case l.events <- ev:
	default:
		// Буфер полон — событие теряем
	}
}

// Close дожидается записи уже принятых событий
func (l *Logger) Close() {
	close(l.events)
	<-l.done
}
