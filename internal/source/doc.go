// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package source resolves model inputs and report destinations that may live
// on local disk or in S3 (s3://bucket/key). Remote models are downloaded
// through the AWS SDK and kept in the on-disk cache keyed by their ETag, so
// an unchanged revision is fetched once.
package source
