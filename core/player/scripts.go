package player

import "fmt"

// runningCheck aborts a script early when the player is not running, so
// queries never launch the application as a side effect.
const runningCheck = `tell application "System Events"
	if not (exists process "Music") then return "NOT_RUNNING"
end tell
`

// snapshotScript returns the full state snapshot: one value per line in
// a fixed order, then a device roster section. String fields come last
// so the numeric prefix parses even for unusual titles.
func snapshotScript() string {
	return runningCheck + `tell application "Music"
	set ps to (player state as text)
	set vol to sound volume
	set sh to shuffle enabled
	set rep to (song repeat as text)
	set dur to 0
	set pos to 0
	set t to ""
	set art to ""
	set alb to ""
	try
		set ct to current track
		set t to name of ct
		set art to artist of ct
		set alb to album of ct
		set dur to duration of ct
		set pos to player position
	end try
	set devLines to ""
	repeat with d in AirPlay devices
		set devLines to devLines & (name of d) & tab & (selected of d) & tab & (sound volume of d) & linefeed
	end repeat
	return ps & linefeed & vol & linefeed & sh & linefeed & rep & linefeed & dur & linefeed & pos & linefeed & t & linefeed & art & linefeed & alb & linefeed & "---devices---" & linefeed & devLines
end tell`
}

// simpleCommand wraps a one-line player command.
func simpleCommand(cmd string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	%s
end tell`, cmd)
}

func setVolumeScript(volume int) string {
	return simpleCommand(fmt.Sprintf("set sound volume to %d", volume))
}

func setShuffleScript(enabled bool) string {
	return simpleCommand(fmt.Sprintf("set shuffle enabled to %t", enabled))
}

func setRepeatScript(mode string) string {
	// mode is validated upstream to off/one/all.
	return simpleCommand(fmt.Sprintf("set song repeat to %s", mode))
}

func seekScript(position float64) string {
	return simpleCommand(fmt.Sprintf("set player position to %g", position))
}

func playPlaylistScript(name string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	if not (exists user playlist "%[1]s") then return "NOT_FOUND"
	play user playlist "%[1]s"
end tell`, escapeString(name))
}

// playAlbumScript queues an album into a scratch playlist and plays it.
// Playing an album directly is not supported by the scripting surface.
func playAlbumScript(name string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose album is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	if (exists user playlist "cortlandcast queue") then delete user playlist "cortlandcast queue"
	set q to make new user playlist with properties {name:"cortlandcast queue", visible:false}
	duplicate matches to q
	play q
end tell`, escapeString(name))
}

func playArtistScript(name string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose artist is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	if (exists user playlist "cortlandcast queue") then delete user playlist "cortlandcast queue"
	set q to make new user playlist with properties {name:"cortlandcast queue", visible:false}
	duplicate matches to q
	play q
end tell`, escapeString(name))
}

func playAlbumTrackScript(album, track string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose album is "%s" and name is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	play (item 1 of matches)
end tell`, escapeString(album), escapeString(track))
}

func playTrackScript(persistentID string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose persistent ID is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	play (item 1 of matches)
end tell`, escapeString(persistentID))
}

// Artwork scripts write raw image data to a caller-owned temp file;
// AppleScript cannot hand binary data back over stdout cleanly.

func currentTrackArtworkScript(destPath string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	if player state is stopped then return "NO_ART"
	set ct to current track
	if (count of artworks of ct) is 0 then return "NO_ART"
	set d to raw data of artwork 1 of ct
end tell
set f to open for access POSIX file "%s" with write permission
set eof f to 0
write d to f
close access f
return "OK"`, escapeString(destPath))
}

func albumArtworkScript(album, destPath string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose album is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set d to missing value
	repeat with trk in matches
		if (count of artworks of trk) > 0 then
			set d to raw data of artwork 1 of trk
			exit repeat
		end if
	end repeat
	if d is missing value then return "NO_ART"
end tell
set f to open for access POSIX file "%s" with write permission
set eof f to 0
write d to f
close access f
return "OK"`, escapeString(album), escapeString(destPath))
}

func trackArtworkScript(persistentID, destPath string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose persistent ID is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set trk to item 1 of matches
	if (count of artworks of trk) is 0 then return "NO_ART"
	set d to raw data of artwork 1 of trk
end tell
set f to open for access POSIX file "%s" with write permission
set eof f to 0
write d to f
close access f
return "OK"`, escapeString(persistentID), escapeString(destPath))
}

func playlistArtworkScript(playlist, destPath string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	if not (exists user playlist "%s") then return "NOT_FOUND"
	set pl to user playlist "%s"
	if (count of artworks of pl) is 0 then return "NO_ART"
	set d to raw data of artwork 1 of pl
end tell
set f to open for access POSIX file "%s" with write permission
set eof f to 0
write d to f
close access f
return "OK"`, escapeString(playlist), escapeString(playlist), escapeString(destPath))
}

func playlistTracksWithArtScript(playlist string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	if not (exists user playlist "%s") then return "NOT_FOUND"
	set out to ""
	repeat with trk in (tracks of user playlist "%s")
		if (count of artworks of trk) > 0 then
			set out to out & (persistent ID of trk) & linefeed
		end if
	end repeat
	return out
end tell`, escapeString(playlist), escapeString(playlist))
}

// Library browse scripts. Multi-value results are emitted one record
// per line with tab-separated fields; commas inside names stay intact.

func albumNamesScript() string {
	return runningCheck + `tell application "Music"
	set out to ""
	repeat with trk in (tracks of library playlist 1)
		set out to out & (album of trk) & linefeed
	end repeat
	return out
end tell`
}

func artistNamesScript() string {
	return runningCheck + `tell application "Music"
	set out to ""
	repeat with trk in (tracks of library playlist 1)
		set out to out & (artist of trk) & linefeed
	end repeat
	return out
end tell`
}

func playlistNamesScript() string {
	return runningCheck + `tell application "Music"
	set out to ""
	repeat with pl in user playlists
		set out to out & (name of pl) & linefeed
	end repeat
	return out
end tell`
}

func albumTracksScript(album string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose album is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set out to ""
	repeat with trk in matches
		set out to out & (persistent ID of trk) & tab & (name of trk) & tab & (artist of trk) & tab & (duration of trk) & linefeed
	end repeat
	return out
end tell`, escapeString(album))
}

func artistAlbumsScript(artist string) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every track of library playlist 1 whose artist is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set out to ""
	repeat with trk in matches
		set out to out & (album of trk) & linefeed
	end repeat
	return out
end tell`, escapeString(artist))
}

func playlistTracksScript(playlist string, limit int) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	if not (exists user playlist "%s") then return "NOT_FOUND"
	set trks to tracks of user playlist "%s"
	set total to count of trks
	set cap to %d
	if total < cap then set cap to total
	set out to "" & total & linefeed
	repeat with i from 1 to cap
		set trk to item i of trks
		set out to out & (persistent ID of trk) & tab & (name of trk) & tab & (artist of trk) & tab & (duration of trk) & linefeed
	end repeat
	return out
end tell`, escapeString(playlist), escapeString(playlist), limit)
}

func libraryTracksScript() string {
	return runningCheck + `tell application "Music"
	set out to ""
	repeat with trk in (tracks of library playlist 1)
		set out to out & (persistent ID of trk) & tab & (name of trk) & tab & (artist of trk) & tab & (album of trk) & linefeed
	end repeat
	return out
end tell`
}

func setDeviceActiveScript(name string, active bool) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every AirPlay device whose name is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set selected of (item 1 of matches) to %t
end tell`, escapeString(name), active)
}

func setDeviceVolumeScript(name string, volume int) string {
	return runningCheck + fmt.Sprintf(`tell application "Music"
	set matches to (every AirPlay device whose name is "%s")
	if (count of matches) is 0 then return "NOT_FOUND"
	set sound volume of (item 1 of matches) to %d
end tell`, escapeString(name), volume)
}
