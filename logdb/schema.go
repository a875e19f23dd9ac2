// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// subject is the transcoder, delegator or recipient an event is about.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	name TEXT NOT NULL,
	subject BLOB(20) NOT NULL,
	data BLOB);

CREATE INDEX IF NOT EXISTS event_i0 ON event(name, seq);
CREATE INDEX IF NOT EXISTS event_i1 ON event(subject, seq);`
