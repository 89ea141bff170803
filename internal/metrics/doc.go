// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package metrics declares the Prometheus series exported on /metrics.

All collectors register with the default registry through promauto at
package init. Callers use the Record* helpers rather than touching the
vectors directly so label values stay consistent:

	metrics.RecordDBQuery("duckdb", "select", time.Since(start), err)
	metrics.RecordAuthAttempt("token", ok)

Series:
  - shelfwise_api_requests_total{method,endpoint,status_code}
  - shelfwise_api_request_duration_seconds{method,endpoint}
  - shelfwise_api_active_requests
  - shelfwise_api_rate_limit_hits_total{limiter}
  - shelfwise_db_query_duration_seconds{driver,operation}
  - shelfwise_db_query_errors_total{driver,operation,error_type}
  - shelfwise_auth_attempts_total{method,result}
  - shelfwise_token_operations_total{backend,operation,result}
  - shelfwise_validation_failures_total{kind,field}
  - shelfwise_app_info{version,go_version,db_driver}
  - shelfwise_app_uptime_seconds

Authorization decision series live in the authz package.
*/
package metrics
