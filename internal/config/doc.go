// Package config provides configuration management for the dashboard.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file: $OLIST_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern OLIST_<SECTION>_<FIELD>:
//
//	OLIST_SERVER_PORT=8080
//	OLIST_DATASET_DATA_DIR=/srv/olist
//	OLIST_DATASET_FILES=orders:orders.xlsx,customers:customers.csv
//	OLIST_DATASET_TRANSLATE_CATEGORIES=true
//	OLIST_DASHBOARD_VARIANT=classic
//	OLIST_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
