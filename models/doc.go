// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Album Keys

Albums are identified by an AlbumKey: a YYYY-MM-DD date plus a sequence
number starting at 1. ParseAlbumKey builds one from path segments.

# Request Types

  - SubmitPlayRequest: user_id, album_date, album_number, succeeded, tries
  - ScheduleImageRequest: album_date, album_number
  - MoveAlbumRequest: album_date, album_number (the target)

# Response Types

  - IdentityResponse: user_id, source
  - SubmitPlayResponse: outcome plus the user result and album stats
  - UserResultResponse: has_played, play_count, result
  - AlbumStatsResponse: totals, success rate and the tries histogram
  - AlbumListResponse, ImageListResponse, HistoryResponse
  - UploadImageResponse, ImageOfTheDayResponse, TitlesResponse
  - ErrorResponse: error, message

# Tries Encoding

A success stores the tries it took, 1 to MaxTries. A failure is stored as
FailedTries (MaxTries + 1). AttemptRecord keeps Succeeded and Tries apart;
EncodedTries recombines them.
*/
package models
