// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package publish uploads built livepatch modules to an S3 bucket under
// <prefix>/<distro>/<file>.
package publish
