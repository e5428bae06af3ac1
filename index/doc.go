// Package index reads the on-disk search index: a single LevelDB sorted
// table holding the index config, optional user info, one record per
// partition and one metadata record per datapoint.
//
// # Keys
//
//	INDEX_CONFIG  serialized indexconfig.IndexConfig
//	USER_INFO     opaque bytes, optional
//	E_<i>         partition i: its datapoints back to back
//	M_<i>         metadata of global datapoint i
//
// Integer suffixes are decimal without padding, so partition and metadata
// records sort lexically (E_0, E_1, E_10, E_2, ...).
package index
