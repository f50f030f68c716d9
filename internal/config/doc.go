// Package config provides configuration management for a11yscan.
package config
