/*
Package config has three parts:

config.go: A really simple key-value store for configs. Stores all
configs as string values internally, but has getters like GetInt,
GetDuration, etc.

defaults.go: For now it is considered a best practise to set all
default values here and write documentation for them.

ini.go: Loads the [paxos] and [demo] sections of an ini-file into a
Config.
*/
package config
