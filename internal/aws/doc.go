// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws builds AWS SDK v2 configuration and S3 clients for reading
// models from and writing reports to S3 or an S3 compatible store.
package aws
