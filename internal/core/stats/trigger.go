package stats

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// 触发器类型
type triggerKind int

const (
	triggerNone triggerKind = iota
	triggerExit
	triggerTimer
	triggerSignal
)

// signalNames 信号名到信号的映射
var signalNames = map[string]os.Signal{
	"HUP":  syscall.SIGHUP,
	"INT":  syscall.SIGINT,
	"TERM": syscall.SIGTERM,
	"USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
}

// parseTrigger 解析触发器描述
//
// 支持 ""、"exit"、"timer:<interval>"、"signal:<signo>"；
// 信号可用编号或名称（可带 SIG 前缀）。
func parseTrigger(trigger string) (triggerKind, time.Duration, os.Signal, error) {
	switch {
	case trigger == "":
		return triggerNone, 0, nil, nil

	case trigger == "exit":
		return triggerExit, 0, nil, nil

	case strings.HasPrefix(trigger, "timer:"):
		interval, err := time.ParseDuration(trigger[len("timer:"):])
		if err != nil || interval <= 0 {
			return triggerNone, 0, nil, fmt.Errorf("%w: %s", ErrInvalidTrigger, trigger)
		}
		return triggerTimer, interval, nil, nil

	case strings.HasPrefix(trigger, "signal:"):
		spec := trigger[len("signal:"):]
		if signo, err := strconv.Atoi(spec); err == nil {
			return triggerSignal, 0, syscall.Signal(signo), nil
		}
		name := strings.TrimPrefix(strings.ToUpper(spec), "SIG")
		if signo, ok := signalNames[name]; ok {
			return triggerSignal, 0, signo, nil
		}
		return triggerNone, 0, nil, fmt.Errorf("%w: %s", ErrInvalidTrigger, trigger)

	default:
		return triggerNone, 0, nil, fmt.Errorf("%w: %s", ErrInvalidTrigger, trigger)
	}
}
