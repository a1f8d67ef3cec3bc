package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Field helpers for common pipeline attributes
func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func ScenarioID(id string) Field {
	return String("scenario_id", id)
}

func TrajectoryID(id string) Field {
	return String("trajectory_id", id)
}

func BreachNode(id string) Field {
	return String("breach_node", id)
}

func Waves(n int) Field {
	return Int("waves", n)
}

func Horizon(years float64) Field {
	return Float64("horizon_years", years)
}

func Granularity(g string) Field {
	return String("granularity", g)
}

func Simulations(n int) Field {
	return Int("simulations", n)
}

func Points(n int) Field {
	return Int("points", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}
