// Package config loads domkit.json.
//
// Every field is optional; missing values keep their defaults. Durations
// are Go duration strings.
//
//	{
//	  "logLevel": "debug",
//	  "toast": {
//	    "short": "3s",
//	    "long": "6s",
//	    "fadeIn": "10ms",
//	    "fadeOut": "300ms"
//	  },
//	  "fetch": {
//	    "baseURL": "https://api.example.com/",
//	    "timeout": "10s",
//	    "headers": {"Authorization": "Bearer ..."}
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "page": "page.json"
//	  }
//	}
//
// Command-line flags override file values.
package config
