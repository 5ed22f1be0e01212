// Package config loads snapfx configuration.
//
// The configuration is stored in snapfx.json (or snapfx.yaml) in the
// working directory. This package handles loading, saving, defaults and
// validation, and turns the result into runtime options.
//
// # Configuration File Structure
//
//	{
//	  "runtime": {
//	    "comparer": "default",
//	    "maxBatchesPerFlush": 100,
//	    "debug": false
//	  },
//	  "demo": {
//	    "interval": "1s",
//	    "ticks": 3
//	  },
//	  "devtools": {
//	    "addr": "localhost:7070"
//	  },
//	  "metrics": {
//	    "namespace": "snapfx"
//	  },
//	  "tracing": {
//	    "tracerName": "snapfx"
//	  },
//	  "log": {
//	    "level": "info"
//	  }
//	}
//
// The same keys are accepted in YAML.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts, err := cfg.RuntimeOptions()
package config
