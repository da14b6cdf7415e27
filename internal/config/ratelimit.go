package config

import "time"

// SensorLimit bounds how often one sensor may report.  A sensor earns one
// report every Every and may save up Burst of them; the ultrasonic firmware
// only reports on state changes, so the defaults are generous.
type SensorLimit struct {
	Enabled bool
	Burst   int
	Every   time.Duration
	Idle    time.Duration // a quiet sensor's bucket is dropped after this long
	Prefix  string
}

func LoadSensorLimit() SensorLimit {
	l := SensorLimit{
		Enabled: envBool("SENSOR_LIMIT_ENABLED", true),
		Burst:   envInt("SENSOR_LIMIT_BURST", 30),
		Every:   envDur("SENSOR_LIMIT_EVERY", time.Second),
		Idle:    envDur("SENSOR_LIMIT_IDLE", 10*time.Minute),
		Prefix:  envStr("SENSOR_LIMIT_PREFIX", "sensor:bucket"),
	}
	if l.Burst < 1 {
		l.Burst = 1
	}
	if l.Every <= 0 {
		l.Every = time.Second
	}
	// The bucket must outlive a full refill or a sensor regains its burst early.
	if full := time.Duration(l.Burst) * l.Every; l.Idle < full {
		l.Idle = full
	}
	return l
}
